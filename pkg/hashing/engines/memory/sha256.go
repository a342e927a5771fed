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

package memory

import (
	"crypto/sha256"
	"hash"

	hashengines "github.com/dreadnode/tensor-man/pkg/hashing/engines"
)

// AlgorithmSHA256 is the canonical name of the SHA-256 engine.
const AlgorithmSHA256 = "sha256"

func init() {
	hashengines.MustRegister(AlgorithmSHA256, func() (hashengines.StreamingHashEngine, error) {
		return NewSHA256(nil)
	})
}

// NewSHA256 creates a SHA-256 engine. If initialData is non-empty it is
// hashed immediately.
func NewSHA256(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(
		AlgorithmSHA256,
		sha256.Size,
		func() (hash.Hash, error) {
			return sha256.New(), nil
		},
		initialData,
	)
}
