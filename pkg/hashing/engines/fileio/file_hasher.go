//
// Copyright 2026 The tensor-man Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fileio provides hash engines that consume files from disk using
// bounded memory, regardless of file size.
package fileio

import (
	"fmt"
	"io"
	"os"

	"github.com/dreadnode/tensor-man/pkg/hashing/digests"
	hashengines "github.com/dreadnode/tensor-man/pkg/hashing/engines"
)

// DefaultChunkSize is the read window used when streaming file contents.
// Model weight files routinely exceed available memory, so files are never
// read whole.
const DefaultChunkSize = 4 * 1024 * 1024

// FileHasher computes the digest of one file.
type FileHasher interface {
	// Compute hashes the file and returns its digest.
	Compute() (digests.Digest, error)

	// DigestName returns the algorithm name recorded in produced digests.
	DigestName() string
}

// FileHasherFactory creates a FileHasher bound to the given path.
type FileHasherFactory func(path string) (FileHasher, error)

// ChunkedFileHasher streams an entire file through an inner
// StreamingHashEngine in fixed-size chunks. The file is read exactly once
// and never loaded into memory at once.
type ChunkedFileHasher struct {
	filePath      string
	contentHasher hashengines.StreamingHashEngine
	chunkSize     int
}

// NewChunkedFileHasher constructs a ChunkedFileHasher. A chunkSize of 0
// selects DefaultChunkSize; negative values are rejected.
func NewChunkedFileHasher(filePath string, contentHasher hashengines.StreamingHashEngine, chunkSize int) (*ChunkedFileHasher, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path must be non-empty")
	}
	if contentHasher == nil {
		return nil, fmt.Errorf("content hasher must not be nil")
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be non-negative, got %d", chunkSize)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	return &ChunkedFileHasher{
		filePath:      filePath,
		contentHasher: contentHasher,
		chunkSize:     chunkSize,
	}, nil
}

// DigestName returns the inner content hasher's algorithm name.
func (h *ChunkedFileHasher) DigestName() string {
	return h.contentHasher.DigestName()
}

// Compute hashes the entire file and returns its digest. The file handle is
// closed before returning, including on error.
func (h *ChunkedFileHasher) Compute() (digests.Digest, error) {
	h.contentHasher.Reset(nil)

	f, err := os.Open(h.filePath)
	if err != nil {
		return digests.Digest{}, fmt.Errorf("open file %q: %w", h.filePath, err)
	}
	defer f.Close()

	buf := make([]byte, h.chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.contentHasher.Update(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return digests.Digest{}, fmt.Errorf("read file %q: %w", h.filePath, err)
		}
	}

	d, err := h.contentHasher.Compute()
	if err != nil {
		return digests.Digest{}, fmt.Errorf("compute digest for %q: %w", h.filePath, err)
	}
	return d, nil
}

// ChunkedFactory returns a FileHasherFactory producing ChunkedFileHashers
// for the named algorithm. Each returned hasher owns a fresh engine, so
// hashers created by the same factory are safe to use concurrently.
func ChunkedFactory(algorithm string, chunkSize int) FileHasherFactory {
	return func(path string) (FileHasher, error) {
		engine, err := hashengines.Create(algorithm)
		if err != nil {
			return nil, err
		}
		return NewChunkedFileHasher(path, engine, chunkSize)
	}
}
