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

package manifest

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	hashengines "github.com/dreadnode/tensor-man/pkg/hashing/engines"
)

// UnsupportedAlgorithmError reports a manifest that is structurally valid
// but uses a version or algorithm this build does not implement. It is
// distinct from ManifestFormatError so callers can suggest upgrading
// rather than treating the document as corrupt.
type UnsupportedAlgorithmError struct {
	Field string
	Value string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Field, e.Value)
}

// ManifestFormatError reports a manifest document that violates the
// format: not JSON, missing fields, non-hex digests, digests whose length
// does not match the declared algorithm, or unsorted file entries.
type ManifestFormatError struct {
	Reason string
}

func (e *ManifestFormatError) Error() string {
	return "invalid signature manifest: " + e.Reason
}

// Encode serializes a manifest to indented JSON with a trailing newline.
// The output is deterministic for a given manifest value.
func Encode(m *SignatureManifest) ([]byte, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and strictly validates a manifest document. Unknown JSON
// fields are rejected so that a manifest produced by a future version is
// never partially interpreted. Decode(Encode(m)) returns a manifest equal
// to m field for field.
func Decode(data []byte) (*SignatureManifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m SignatureManifest
	if err := dec.Decode(&m); err != nil {
		return nil, &ManifestFormatError{Reason: err.Error()}
	}
	if dec.More() {
		return nil, &ManifestFormatError{Reason: "trailing data after manifest document"}
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *SignatureManifest) error {
	if m.Version != Version {
		return &UnsupportedAlgorithmError{Field: "manifest version", Value: m.Version}
	}
	if m.Algorithms.Signature != SignatureEd25519 {
		return &UnsupportedAlgorithmError{Field: "signature algorithm", Value: m.Algorithms.Signature}
	}
	if !hashengines.IsSupported(m.Algorithms.Hash) {
		return &UnsupportedAlgorithmError{Field: "hash algorithm", Value: m.Algorithms.Hash}
	}

	digestSize, err := algorithmDigestSize(m.Algorithms.Hash)
	if err != nil {
		return err
	}

	if m.CreatedAt == "" {
		return &ManifestFormatError{Reason: "missing created_at"}
	}
	if m.PublicKeyFingerprint == "" {
		return &ManifestFormatError{Reason: "missing public_key_fingerprint"}
	}
	if len(m.Files) == 0 {
		return &ManifestFormatError{Reason: "manifest covers no files"}
	}

	for i, f := range m.Files {
		if f.Path == "" {
			return &ManifestFormatError{Reason: fmt.Sprintf("file entry %d has empty path", i)}
		}
		if strings.Contains(f.Path, "\\") || strings.HasPrefix(f.Path, "/") {
			return &ManifestFormatError{Reason: fmt.Sprintf("file path %q is not a relative slash path", f.Path)}
		}
		if f.Size < 0 {
			return &ManifestFormatError{Reason: fmt.Sprintf("file %q has negative size", f.Path)}
		}
		if err := checkHexDigest(f.Digest, digestSize, "digest of "+f.Path); err != nil {
			return err
		}
		if i > 0 && m.Files[i-1].Path >= f.Path {
			return &ManifestFormatError{Reason: "file entries are not in sorted order"}
		}
	}
	if !sort.SliceIsSorted(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path }) {
		return &ManifestFormatError{Reason: "file entries are not in sorted order"}
	}

	if err := checkHexDigest(m.RootDigest, digestSize, "root digest"); err != nil {
		return err
	}
	if m.Signature == "" {
		return &ManifestFormatError{Reason: "missing signature"}
	}
	sig, err := hex.DecodeString(m.Signature)
	if err != nil {
		return &ManifestFormatError{Reason: "signature is not valid hex"}
	}
	if len(sig) != ed25519.SignatureSize {
		return &ManifestFormatError{
			Reason: fmt.Sprintf("signature has %d bytes, ed25519 produces %d", len(sig), ed25519.SignatureSize),
		}
	}
	return nil
}

func checkHexDigest(value string, size int, what string) error {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return &ManifestFormatError{Reason: what + " is not valid hex"}
	}
	if len(raw) != size {
		return &ManifestFormatError{
			Reason: fmt.Sprintf("%s has %d bytes, algorithm produces %d", what, len(raw), size),
		}
	}
	return nil
}

func algorithmDigestSize(algorithm string) (int, error) {
	engine, err := hashengines.Create(algorithm)
	if err != nil {
		return 0, &UnsupportedAlgorithmError{Field: "hash algorithm", Value: algorithm}
	}
	return engine.DigestSize(), nil
}
