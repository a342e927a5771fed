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

// Package verify checks an artifact against its signature manifest. The
// artifact is re-resolved and re-hashed from scratch, compared against the
// manifest element by element, and the signature is checked over the
// recomputed root digest. A failed verification is a result, not an
// error: errors are reserved for problems that prevent the check itself.
package verify

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/dreadnode/tensor-man/internal/crypto"
	"github.com/dreadnode/tensor-man/pkg/artifact"
	"github.com/dreadnode/tensor-man/pkg/hashing"
	"github.com/dreadnode/tensor-man/pkg/keys"
	"github.com/dreadnode/tensor-man/pkg/logging"
	"github.com/dreadnode/tensor-man/pkg/manifest"
)

// Mismatch reports one covered file whose recomputed state differs from
// the manifest. Field is "size" or "digest".
type Mismatch struct {
	Path     string
	Field    string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s mismatch (manifest %s, artifact %s)", m.Path, m.Field, m.Expected, m.Actual)
}

// Result is the complete outcome of a verification. All content findings
// are collected; the check never stops at the first problem.
type Result struct {
	// MissingFiles are manifest entries absent from the artifact.
	MissingFiles []string
	// ExtraFiles are artifact files the manifest does not cover.
	ExtraFiles []string
	// Mismatches are files present on both sides with differing size or
	// content.
	Mismatches []Mismatch
	// SignatureValid reports whether the manifest's signature verifies
	// over the recomputed root digest with the supplied public key.
	SignatureValid bool
	// FingerprintMatches reports whether the supplied public key matches
	// the fingerprint recorded in the manifest.
	FingerprintMatches bool
}

// ContentIntact reports whether the artifact's files exactly match the
// manifest, independent of the signature check.
func (r *Result) ContentIntact() bool {
	return len(r.MissingFiles) == 0 && len(r.ExtraFiles) == 0 && len(r.Mismatches) == 0
}

// OK reports whether the verification passed in full.
func (r *Result) OK() bool {
	return r.ContentIntact() && r.SignatureValid && r.FingerprintMatches
}

// Options tune a verification run.
type Options struct {
	// Workers bounds hashing concurrency. Zero selects the CPU count.
	Workers int
	// Logger receives progress diagnostics. Nil selects the default.
	Logger logging.Logger
}

// Verify checks the artifact at path against the signature manifest at
// sigPath using the given public key. The file set is resolved and hashed
// independently of the manifest's claims, so a manifest cannot narrow
// what gets checked.
func Verify(ctx context.Context, path, sigPath string, pub ed25519.PublicKey, opts Options) (*Result, error) {
	data, err := os.ReadFile(sigPath)
	if err != nil {
		return nil, fmt.Errorf("read signature manifest %q: %w", sigPath, err)
	}
	m, err := manifest.Decode(data)
	if err != nil {
		return nil, err
	}

	log := logging.EnsureLogger(opts.Logger)

	set, err := artifact.Resolve(path)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved %d file(s) under %s, manifest covers %d", len(set.Paths), set.Root, len(m.Files))

	if len(set.Paths) == 0 {
		// Nothing survives on disk: every covered file is missing and there
		// is no content left to bind the signature to.
		result := &Result{FingerprintMatches: keys.Fingerprint(pub) == m.PublicKeyFingerprint}
		for _, f := range m.Files {
			result.MissingFiles = append(result.MissingFiles, f.Path)
		}
		return result, nil
	}

	summary, err := hashing.HashFileSet(ctx, set, m.Algorithms.Hash, opts.Workers)
	if err != nil {
		return nil, err
	}

	result := compare(m, summary)
	result.FingerprintMatches = keys.Fingerprint(pub) == m.PublicKeyFingerprint

	signature, err := m.SignatureBytes()
	if err != nil {
		return nil, &manifest.ManifestFormatError{Reason: err.Error()}
	}
	result.SignatureValid = crypto.VerifyEd25519(pub, summary.RootDigest.Value(), signature) == nil

	return result, nil
}

// compare walks the manifest entries and recomputed records, both in
// lexicographic path order, and collects every difference.
func compare(m *manifest.SignatureManifest, summary *hashing.Summary) *Result {
	result := &Result{}

	i, j := 0, 0
	for i < len(m.Files) && j < len(summary.Files) {
		want, got := m.Files[i], summary.Files[j]
		switch {
		case want.Path < got.Path:
			result.MissingFiles = append(result.MissingFiles, want.Path)
			i++
		case want.Path > got.Path:
			result.ExtraFiles = append(result.ExtraFiles, got.Path)
			j++
		default:
			if want.Size != got.Size {
				result.Mismatches = append(result.Mismatches, Mismatch{
					Path:     want.Path,
					Field:    "size",
					Expected: fmt.Sprintf("%d", want.Size),
					Actual:   fmt.Sprintf("%d", got.Size),
				})
			} else if want.Digest != got.Digest.Hex() {
				result.Mismatches = append(result.Mismatches, Mismatch{
					Path:     want.Path,
					Field:    "digest",
					Expected: want.Digest,
					Actual:   got.Digest.Hex(),
				})
			}
			i++
			j++
		}
	}
	for ; i < len(m.Files); i++ {
		result.MissingFiles = append(result.MissingFiles, m.Files[i].Path)
	}
	for ; j < len(summary.Files); j++ {
		result.ExtraFiles = append(result.ExtraFiles, summary.Files[j].Path)
	}

	return result
}
