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

package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreadnode/tensor-man/pkg/hashing/engines/memory"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestChunkedMatchesInMemory(t *testing.T) {
	// Spans several chunks plus a ragged tail.
	data := bytes.Repeat([]byte("0123456789abcdef"), 1024)
	data = append(data, 'x')
	path := writeTestFile(t, "weights.bin", data)

	engine, err := memory.NewBLAKE2b(data)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	want, err := engine.Compute()
	if err != nil {
		t.Fatalf("compute reference: %v", err)
	}

	factory := ChunkedFactory(memory.AlgorithmBLAKE2b512, 1024)
	hasher, err := factory(path)
	if err != nil {
		t.Fatalf("create hasher: %v", err)
	}
	got, err := hasher.Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if !got.Equal(want) {
		t.Fatalf("chunked digest differs from in-memory digest")
	}
}

func TestChunkSizeDoesNotAffectDigest(t *testing.T) {
	path := writeTestFile(t, "f.bin", bytes.Repeat([]byte{7}, 10_000))

	var last string
	for _, chunkSize := range []int{1, 64, 4096, DefaultChunkSize} {
		hasher, err := ChunkedFactory(memory.AlgorithmSHA256, chunkSize)(path)
		if err != nil {
			t.Fatalf("create hasher: %v", err)
		}
		d, err := hasher.Compute()
		if err != nil {
			t.Fatalf("compute with chunk size %d: %v", chunkSize, err)
		}
		if last != "" && d.Hex() != last {
			t.Fatalf("chunk size %d changed the digest", chunkSize)
		}
		last = d.Hex()
	}
}

func TestEmptyFile(t *testing.T) {
	path := writeTestFile(t, "empty", nil)

	hasher, err := ChunkedFactory(memory.AlgorithmSHA256, 0)(path)
	if err != nil {
		t.Fatalf("create hasher: %v", err)
	}
	d, err := hasher.Compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// SHA-256 of the empty string.
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if d.Hex() != want {
		t.Fatalf("empty file digest = %s, want %s", d.Hex(), want)
	}
}

func TestMissingFileFails(t *testing.T) {
	hasher, err := ChunkedFactory(memory.AlgorithmSHA256, 0)(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("create hasher: %v", err)
	}
	if _, err := hasher.Compute(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewChunkedFileHasherValidation(t *testing.T) {
	engine, err := memory.NewSHA256(nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := NewChunkedFileHasher("", engine, 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := NewChunkedFileHasher("f", nil, 0); err == nil {
		t.Fatalf("expected error for nil engine")
	}
	if _, err := NewChunkedFileHasher("f", engine, -1); err == nil {
		t.Fatalf("expected error for negative chunk size")
	}
}
