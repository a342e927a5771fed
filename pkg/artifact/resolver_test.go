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

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, dir, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.bin", []byte("weights"))

	set, err := Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if set.Root != dir {
		t.Fatalf("root = %q, want %q", set.Root, dir)
	}
	if !reflect.DeepEqual(set.Paths, []string{"model.bin"}) {
		t.Fatalf("paths = %v", set.Paths)
	}
}

func TestResolveDirectorySortedAndRelative(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.bin", []byte("z"))
	writeFile(t, dir, "a.bin", []byte("a"))
	writeFile(t, dir, "sub/nested.bin", []byte("n"))

	set, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := []string{"a.bin", "sub/nested.bin", "z.bin"}
	if !reflect.DeepEqual(set.Paths, want) {
		t.Fatalf("paths = %v, want %v", set.Paths, want)
	}
}

func TestResolveExcludesSignatureFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.bin", []byte("m"))
	writeFile(t, dir, "model.bin.signature", []byte("{}"))
	writeFile(t, dir, "old.signature", []byte("{}"))

	set, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(set.Paths, []string{"model.bin"}) {
		t.Fatalf("paths = %v, want only model.bin", set.Paths)
	}
}

func TestResolveIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", []byte("1"))
	writeFile(t, dir, "b", []byte("2"))

	first, err := Resolve(dir)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := Resolve(dir)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution is not idempotent: %v != %v", first, second)
	}
}

func TestResolveSafetensorsIndexPullsShards(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "model.safetensors.index.json", []byte(`{
		"weight_map": {
			"layer.0": "model-00001-of-00002.safetensors",
			"layer.1": "model-00002-of-00002.safetensors",
			"layer.2": "model-00001-of-00002.safetensors"
		}
	}`))
	writeFile(t, dir, "model-00001-of-00002.safetensors", []byte("s1"))
	writeFile(t, dir, "model-00002-of-00002.safetensors", []byte("s2"))

	set, err := Resolve(index)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := []string{
		"model-00001-of-00002.safetensors",
		"model-00002-of-00002.safetensors",
		"model.safetensors.index.json",
	}
	if !reflect.DeepEqual(set.Paths, want) {
		t.Fatalf("paths = %v, want %v", set.Paths, want)
	}
}

func TestResolveMissingShardFails(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "model.safetensors.index.json", []byte(`{
		"weight_map": {"layer.0": "model-00001-of-00002.safetensors"}
	}`))

	_, err := Resolve(index)
	var missing *MissingReferenceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingReferenceError, got %v", err)
	}
	if missing.Reference != "model-00001-of-00002.safetensors" {
		t.Fatalf("reference = %q", missing.Reference)
	}
}

func TestResolveNonexistentPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "absent"))
	var unresolvable *UnresolvableArtifactError
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableArtifactError, got %v", err)
	}
}

func TestResolveRejectsUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skipf("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skipf("running as root, permission bits are not enforced")
	}

	dir := t.TempDir()
	writeFile(t, dir, "open.bin", []byte("o"))
	locked := writeFile(t, dir, "locked.bin", []byte("l"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	var unresolvable *UnresolvableArtifactError

	_, err := Resolve(locked)
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableArtifactError for unreadable file, got %v", err)
	}

	_, err = Resolve(dir)
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableArtifactError for directory containing unreadable file, got %v", err)
	}
}

func TestResolveRejectsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "real.bin", []byte("r"))
	link := filepath.Join(dir, "link.bin")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	var unresolvable *UnresolvableArtifactError

	_, err := Resolve(link)
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableArtifactError for symlink artifact, got %v", err)
	}

	_, err = Resolve(dir)
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableArtifactError for directory containing symlink, got %v", err)
	}
}
