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

// Package artifact turns a user-supplied path into the exact set of files
// a signature covers. A model artifact may be a single file, a file whose
// header or index references companion shards, or a whole directory tree;
// resolution normalizes all three into one deterministic file set.
package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dreadnode/tensor-man/pkg/model/formats"
)

// SignatureSuffix marks detached signature files. They are excluded from
// every resolved file set so that signing a tree never covers a previous
// signature and re-signing stays idempotent.
const SignatureSuffix = ".signature"

// FileSet is the resolved closure of an artifact. Paths are relative to
// Root, use forward slashes on every platform, are deduplicated and sorted
// lexicographically. Two resolutions of the same on-disk state always
// produce identical file sets.
type FileSet struct {
	// Root is the absolute directory all Paths are relative to.
	Root string
	// Paths are the covered files in lexicographic order.
	Paths []string
}

// AbsPath returns the absolute location of a relative path in the set.
func (s *FileSet) AbsPath(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Resolve expands path into the file set a signature must cover.
//
// A regular file resolves to itself plus any companion files its format
// header or index references (safetensors shards, GGUF splits, ONNX
// external data). A directory resolves to every regular file beneath it.
// Signature files are always excluded. Symbolic links are rejected: a
// signature must bind file contents that are actually inside the artifact,
// not whatever a link happens to point at. Files the process cannot open
// are likewise rejected as unresolvable.
func Resolve(path string) (*FileSet, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &UnresolvableArtifactError{Path: path, Reason: "no such file or directory"}
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return resolveFile(path)
	case info.IsDir():
		return resolveDir(path)
	case info.Mode()&fs.ModeSymlink != 0:
		return nil, &UnresolvableArtifactError{Path: path, Reason: "symbolic links are not supported"}
	default:
		return nil, &UnresolvableArtifactError{Path: path, Reason: "not a regular file or directory"}
	}
}

func resolveFile(path string) (*FileSet, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(abs)

	if err := ensureReadable(abs); err != nil {
		return nil, err
	}
	paths := []string{filepath.Base(abs)}

	refs, err := formats.BackingFiles(abs)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		rel := filepath.ToSlash(ref)
		if strings.HasSuffix(rel, SignatureSuffix) {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(rel))
		ti, err := os.Lstat(target)
		if err != nil || !ti.Mode().IsRegular() {
			return nil, &MissingReferenceError{Artifact: path, Reference: rel}
		}
		if err := ensureReadable(target); err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}

	return newFileSet(root, paths), nil
}

func resolveDir(path string) (*FileSet, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return &UnresolvableArtifactError{Path: p, Reason: "symbolic links are not supported"}
		}
		if !d.Type().IsRegular() {
			return &UnresolvableArtifactError{Path: p, Reason: "not a regular file"}
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasSuffix(rel, SignatureSuffix) {
			return nil
		}
		if err := ensureReadable(p); err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return newFileSet(root, paths), nil
}

// ensureReadable opens and closes the file so permission problems fail
// resolution instead of surfacing later during hashing.
func ensureReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &UnresolvableArtifactError{Path: path, Reason: "file is not readable"}
	}
	return f.Close()
}

// newFileSet normalizes the collected paths into the canonical order the
// root digest depends on.
func newFileSet(root string, paths []string) *FileSet {
	sort.Strings(paths)

	deduped := paths[:0]
	var last string
	for i, p := range paths {
		if i > 0 && p == last {
			continue
		}
		deduped = append(deduped, p)
		last = p
	}

	return &FileSet{Root: root, Paths: deduped}
}
