// Copyright 2026 The tensor-man Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreadnode/tensor-man/pkg/artifact"
	"github.com/dreadnode/tensor-man/pkg/hashing/digests"
	"github.com/dreadnode/tensor-man/pkg/hashing/engines/memory"
)

func buildTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for rel, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

func resolve(t *testing.T, path string) *artifact.FileSet {
	t.Helper()
	set, err := artifact.Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return set
}

func TestHashFileSetDeterministicAcrossWorkerCounts(t *testing.T) {
	dir := buildTree(t, map[string][]byte{
		"a.bin":     []byte("alpha"),
		"b.bin":     []byte("beta"),
		"sub/c.bin": []byte("gamma"),
	})
	set := resolve(t, dir)

	var lastRoot string
	for _, workers := range []int{1, 2, 8} {
		summary, err := HashFileSet(context.Background(), set, memory.AlgorithmBLAKE2b512, workers)
		if err != nil {
			t.Fatalf("hash with %d workers: %v", workers, err)
		}
		if len(summary.Files) != 3 {
			t.Fatalf("got %d records, want 3", len(summary.Files))
		}
		for i := 1; i < len(summary.Files); i++ {
			if summary.Files[i-1].Path >= summary.Files[i].Path {
				t.Fatalf("records out of order: %v", summary.Files)
			}
		}
		if lastRoot != "" && summary.RootDigest.Hex() != lastRoot {
			t.Fatalf("worker count %d changed the root digest", workers)
		}
		lastRoot = summary.RootDigest.Hex()
	}
}

func TestRootDigestChangesWhenNamesSwap(t *testing.T) {
	// Same contents under swapped names must produce a different root
	// digest, because the encoding binds each digest to its path.
	dirA := buildTree(t, map[string][]byte{"x": []byte("one"), "y": []byte("two")})
	dirB := buildTree(t, map[string][]byte{"x": []byte("two"), "y": []byte("one")})

	sumA, err := HashFileSet(context.Background(), resolve(t, dirA), memory.AlgorithmBLAKE2b512, 0)
	if err != nil {
		t.Fatalf("hash A: %v", err)
	}
	sumB, err := HashFileSet(context.Background(), resolve(t, dirB), memory.AlgorithmBLAKE2b512, 0)
	if err != nil {
		t.Fatalf("hash B: %v", err)
	}

	if sumA.RootDigest.Equal(sumB.RootDigest) {
		t.Fatalf("swapped file names produced the same root digest")
	}
}

func TestRootDigestBindsSizes(t *testing.T) {
	records := []FileRecord{
		{Path: "a", Digest: mustDigest(t, []byte("data")), Size: 4},
	}
	grown := []FileRecord{
		{Path: "a", Digest: mustDigest(t, []byte("data")), Size: 5},
	}

	a, err := RootDigest(memory.AlgorithmBLAKE2b512, records)
	if err != nil {
		t.Fatalf("root digest: %v", err)
	}
	b, err := RootDigest(memory.AlgorithmBLAKE2b512, grown)
	if err != nil {
		t.Fatalf("root digest: %v", err)
	}
	if a.Equal(b) {
		t.Fatalf("size change did not change root digest")
	}
}

func TestRootDigestRejectsUnsortedInput(t *testing.T) {
	records := []FileRecord{
		{Path: "b", Digest: mustDigest(t, []byte("1")), Size: 1},
		{Path: "a", Digest: mustDigest(t, []byte("2")), Size: 1},
	}
	if _, err := RootDigest(memory.AlgorithmBLAKE2b512, records); err == nil {
		t.Fatalf("expected error for unsorted records")
	}
}

func TestHashFileSetCollectsAllFailures(t *testing.T) {
	dir := buildTree(t, map[string][]byte{
		"ok.bin": []byte("fine"),
		"gone1":  []byte("1"),
		"gone2":  []byte("2"),
	})
	set := resolve(t, dir)

	// Remove two files after resolution so hashing hits them missing.
	os.Remove(filepath.Join(dir, "gone1"))
	os.Remove(filepath.Join(dir, "gone2"))

	_, err := HashFileSet(context.Background(), set, memory.AlgorithmBLAKE2b512, 2)
	var partial *PartialHashFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialHashFailureError, got %v", err)
	}
	if len(partial.Failures) != 2 {
		t.Fatalf("got %d failures, want 2: %v", len(partial.Failures), partial)
	}
}

func TestHashFileSetUnsupportedAlgorithm(t *testing.T) {
	dir := buildTree(t, map[string][]byte{"f": []byte("x")})
	if _, err := HashFileSet(context.Background(), resolve(t, dir), "md5", 1); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestHashFileSetCancelled(t *testing.T) {
	dir := buildTree(t, map[string][]byte{"f": []byte("x")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := HashFileSet(ctx, resolve(t, dir), memory.AlgorithmBLAKE2b512, 1); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func mustDigest(t *testing.T, data []byte) digests.Digest {
	t.Helper()
	engine, err := memory.NewBLAKE2b(data)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	d, err := engine.Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return d
}
