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

// Package manifest defines the signature manifest document and its
// versioned JSON codec. The manifest records everything a verifier needs:
// which files a signature covers, their digests and sizes, the root digest
// that was signed, and the signature itself.
package manifest

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the current manifest document version. Decoding rejects any
// other value.
const Version = "1.0"

// SignatureEd25519 is the only supported signature algorithm identifier.
const SignatureEd25519 = "ed25519"

// Algorithms names the hash and signature algorithms a manifest was
// produced with.
type Algorithms struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// FileRecord is one covered file as recorded in a manifest. Digest is the
// lowercase hex content digest.
type FileRecord struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Size   int64  `json:"size"`
}

// SignatureManifest is the signed statement about an artifact. Files are
// in lexicographic path order; RootDigest and Signature are lowercase hex.
type SignatureManifest struct {
	Version              string       `json:"version"`
	CreatedAt            string       `json:"created_at"`
	CreatedWith          string       `json:"created_with"`
	Algorithms           Algorithms   `json:"algorithms"`
	PublicKeyFingerprint string       `json:"public_key_fingerprint"`
	Files                []FileRecord `json:"files"`
	RootDigest           string       `json:"root_digest"`
	Signature            string       `json:"signature"`
}

// New returns a manifest shell stamped with the current UTC time and the
// given producer string. Files, digests and signature are filled in by the
// signing orchestrator.
func New(createdWith, hashAlgorithm, fingerprint string) *SignatureManifest {
	return &SignatureManifest{
		Version:     Version,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		CreatedWith: createdWith,
		Algorithms: Algorithms{
			Hash:      hashAlgorithm,
			Signature: SignatureEd25519,
		},
		PublicKeyFingerprint: fingerprint,
	}
}

// RootDigestBytes decodes the manifest's root digest from hex.
func (m *SignatureManifest) RootDigestBytes() ([]byte, error) {
	b, err := hex.DecodeString(m.RootDigest)
	if err != nil {
		return nil, fmt.Errorf("root digest is not valid hex: %w", err)
	}
	return b, nil
}

// SignatureBytes decodes the manifest's signature from hex.
func (m *SignatureManifest) SignatureBytes() ([]byte, error) {
	b, err := hex.DecodeString(m.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature is not valid hex: %w", err)
	}
	return b, nil
}
