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

// Package hashing computes per-file digests over a resolved file set and
// folds them into a single root digest that a signature binds.
package hashing

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dreadnode/tensor-man/internal/crypto"
	"github.com/dreadnode/tensor-man/pkg/artifact"
	"github.com/dreadnode/tensor-man/pkg/hashing/digests"
	hashengines "github.com/dreadnode/tensor-man/pkg/hashing/engines"
	"github.com/dreadnode/tensor-man/pkg/hashing/engines/fileio"

	// Register the built-in hash algorithms.
	_ "github.com/dreadnode/tensor-man/pkg/hashing/engines/memory"
)

// FileRecord is the hashed identity of one covered file.
type FileRecord struct {
	// Path is relative to the file set root, slash-separated.
	Path string
	// Digest is the content digest of the file.
	Digest digests.Digest
	// Size is the file length in bytes at hashing time.
	Size int64
}

// Summary is the complete hashed state of a file set. Files preserve the
// file set's lexicographic order, which the root digest depends on.
type Summary struct {
	Algorithm  string
	Files      []FileRecord
	RootDigest digests.Digest
}

// FileFailure pairs a path with the error that prevented hashing it.
type FileFailure struct {
	Path string
	Err  error
}

// PartialHashFailureError reports every file that failed to hash. Hashing
// a file set is all-or-nothing: one unreadable file fails the whole run,
// but all failures are surfaced together rather than just the first.
type PartialHashFailureError struct {
	Failures []FileFailure
}

func (e *PartialHashFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to hash %d file(s):", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.Path, f.Err)
	}
	return b.String()
}

// HashFileSet hashes every file in the set concurrently with the named
// algorithm and computes the root digest over the results. workers bounds
// concurrency; values below one select the number of CPUs. The returned
// Summary is deterministic for a given on-disk state regardless of worker
// count or scheduling.
func HashFileSet(ctx context.Context, set *artifact.FileSet, algorithm string, workers int) (*Summary, error) {
	if set == nil || len(set.Paths) == 0 {
		return nil, fmt.Errorf("file set is empty")
	}
	if !hashengines.IsSupported(algorithm) {
		return nil, fmt.Errorf("unsupported hash algorithm: %s (supported: %v)",
			algorithm, hashengines.SupportedAlgorithms())
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	factory := fileio.ChunkedFactory(algorithm, fileio.DefaultChunkSize)

	// Results land in index-addressed slots so output order matches the
	// file set's order no matter how the workers are scheduled.
	records := make([]FileRecord, len(set.Paths))
	failures := make([]error, len(set.Paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range set.Paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			abs := set.AbsPath(rel)
			info, err := os.Stat(abs)
			if err != nil {
				failures[i] = err
				return nil
			}

			hasher, err := factory(abs)
			if err != nil {
				return err
			}
			d, err := hasher.Compute()
			if err != nil {
				failures[i] = err
				return nil
			}

			records[i] = FileRecord{Path: rel, Digest: d, Size: info.Size()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failed []FileFailure
	for i, err := range failures {
		if err != nil {
			failed = append(failed, FileFailure{Path: set.Paths[i], Err: err})
		}
	}
	if len(failed) > 0 {
		return nil, &PartialHashFailureError{Failures: failed}
	}

	root, err := RootDigest(algorithm, records)
	if err != nil {
		return nil, err
	}

	return &Summary{Algorithm: algorithm, Files: records, RootDigest: root}, nil
}

// RootDigest computes the digest that binds the whole file set: paths,
// per-file digests and sizes are serialized with an unambiguous
// length-prefixed encoding and hashed as one message. Any rename, content
// change, truncation, addition or removal changes the result. Records must
// already be in lexicographic path order; out-of-order input is rejected.
func RootDigest(algorithm string, files []FileRecord) (digests.Digest, error) {
	if len(files) == 0 {
		return digests.Digest{}, fmt.Errorf("cannot compute root digest of empty file list")
	}
	if !sort.SliceIsSorted(files, func(i, j int) bool { return files[i].Path < files[j].Path }) {
		return digests.Digest{}, fmt.Errorf("file records must be sorted by path")
	}

	entries := make([]crypto.FileEntry, len(files))
	for i, f := range files {
		entries[i] = crypto.FileEntry{
			Path:   f.Path,
			Digest: f.Digest.Value(),
			Size:   f.Size,
		}
	}

	engine, err := hashengines.Create(algorithm)
	if err != nil {
		return digests.Digest{}, err
	}
	engine.Update(crypto.EncodeFileEntries(entries))
	return engine.Compute()
}
