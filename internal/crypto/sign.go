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

package crypto

import (
	"crypto/ed25519"
	"fmt"
)

// SignEd25519 signs message with an Ed25519 private key. Ed25519 signs the
// message directly, without pre-hashing.
func SignEd25519(key ed25519.PrivateKey, message []byte) ([]byte, error) {
	if l := len(key); l != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid Ed25519 private key length: %d", l)
	}
	return ed25519.Sign(key, message), nil
}

// VerifyEd25519 verifies an Ed25519 signature over message. It returns an
// error when the signature does not verify, so callers can distinguish the
// failure from I/O or format problems by error identity.
func VerifyEd25519(key ed25519.PublicKey, message, signature []byte) error {
	if l := len(key); l != ed25519.PublicKeySize {
		return fmt.Errorf("invalid Ed25519 public key length: %d", l)
	}
	if !ed25519.Verify(key, message, signature) {
		return fmt.Errorf("Ed25519 signature verification failed")
	}
	return nil
}
