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

// Package hashengines defines the interfaces for cryptographic hash
// computation and a registry of available algorithms.
//
// Engines support both one-shot hashing and streaming, where data is fed
// incrementally before the digest is finalized.
package hashengines

import (
	"github.com/dreadnode/tensor-man/pkg/hashing/digests"
)

// HashEngine is the core interface for computing cryptographic hashes.
//
// The algorithm name reported by DigestName must include every parameter
// that affects the hash output, so that a digest's algorithm field alone is
// enough to reconstruct a compatible engine during verification.
type HashEngine interface {
	// Compute finalizes the hash computation and returns the resulting digest.
	Compute() (digests.Digest, error)

	// DigestName returns the canonical name of the hash algorithm.
	DigestName() string

	// DigestSize returns the size in bytes of digests produced by this
	// engine. It must match the Size() of the Digest returned by Compute.
	DigestSize() int
}

// Streaming is the interface for incrementally feeding data to a hash engine.
// It is kept separate from HashEngine so that one-shot implementations do not
// have to fake streaming support.
type Streaming interface {
	// Update appends data to the bytes being hashed.
	Update(data []byte)

	// Reset clears the hash state and optionally seeds it with data.
	Reset(data []byte)
}

// StreamingHashEngine combines HashEngine and Streaming for incremental use.
type StreamingHashEngine interface {
	HashEngine
	Streaming
}
