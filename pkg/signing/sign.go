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

// Package signing orchestrates the sign path: resolve an artifact into
// its file set, hash it, sign the root digest, and write the signature
// manifest atomically.
package signing

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreadnode/tensor-man/internal/crypto"
	"github.com/dreadnode/tensor-man/internal/version"
	"github.com/dreadnode/tensor-man/pkg/artifact"
	"github.com/dreadnode/tensor-man/pkg/hashing"
	"github.com/dreadnode/tensor-man/pkg/hashing/engines/memory"
	"github.com/dreadnode/tensor-man/pkg/keys"
	"github.com/dreadnode/tensor-man/pkg/logging"
	"github.com/dreadnode/tensor-man/pkg/manifest"
)

// Options tune a signing run. The zero value selects the defaults.
type Options struct {
	// HashAlgorithm is the content hash. Empty selects BLAKE2b-512.
	HashAlgorithm string
	// Workers bounds hashing concurrency. Zero selects the CPU count.
	Workers int
	// SignaturePath is where the manifest is written. Empty selects
	// SignaturePathFor(artifactPath).
	SignaturePath string
	// Logger receives progress diagnostics. Nil selects the default.
	Logger logging.Logger
}

// SignaturePathFor returns the default signature location for an
// artifact: the artifact path with the signature suffix appended.
func SignaturePathFor(artifactPath string) string {
	return strings.TrimRight(artifactPath, "/"+string(filepath.Separator)) + artifact.SignatureSuffix
}

// Sign resolves, hashes and signs the artifact at path, then writes the
// signature manifest. The manifest appears on disk atomically: it is
// written to a temporary file in the destination directory and renamed
// into place, so a failed run never leaves a partial signature behind.
func Sign(ctx context.Context, path string, key ed25519.PrivateKey, opts Options) (*manifest.SignatureManifest, string, error) {
	algorithm := opts.HashAlgorithm
	if algorithm == "" {
		algorithm = memory.AlgorithmBLAKE2b512
	}
	sigPath := opts.SignaturePath
	if sigPath == "" {
		sigPath = SignaturePathFor(path)
	}
	log := logging.EnsureLogger(opts.Logger)

	set, err := artifact.Resolve(path)
	if err != nil {
		return nil, "", err
	}
	log.Debug("resolved %d file(s) under %s", len(set.Paths), set.Root)

	summary, err := hashing.HashFileSet(ctx, set, algorithm, opts.Workers)
	if err != nil {
		return nil, "", err
	}
	log.Debug("root digest %s:%s", summary.Algorithm, summary.RootDigest.Hex())

	signature, err := crypto.SignEd25519(key, summary.RootDigest.Value())
	if err != nil {
		return nil, "", err
	}

	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, "", fmt.Errorf("private key has no ed25519 public key")
	}

	m := manifest.New(version.Producer(), algorithm, keys.Fingerprint(pub))
	m.Files = make([]manifest.FileRecord, len(summary.Files))
	for i, f := range summary.Files {
		m.Files[i] = manifest.FileRecord{
			Path:   f.Path,
			Digest: f.Digest.Hex(),
			Size:   f.Size,
		}
	}
	m.RootDigest = summary.RootDigest.Hex()
	m.Signature = hex.EncodeToString(signature)

	data, err := manifest.Encode(m)
	if err != nil {
		return nil, "", err
	}
	if err := writeAtomic(sigPath, data); err != nil {
		return nil, "", err
	}
	return m, sigPath, nil
}

// writeAtomic writes data to path through a temporary file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tman-sig-*")
	if err != nil {
		return fmt.Errorf("create temporary signature file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write signature manifest: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("set signature file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close signature file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move signature into place: %w", err)
	}
	return nil
}
