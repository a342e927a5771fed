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

package signing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dreadnode/tensor-man/pkg/artifact"
	"github.com/dreadnode/tensor-man/pkg/keys"
	"github.com/dreadnode/tensor-man/pkg/manifest"
)

func TestSignWritesValidManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.bin"), []byte("weights"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	pub, priv, err := keys.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m, sigPath, err := Sign(context.Background(), dir, priv, Options{
		SignaturePath: filepath.Join(t.TempDir(), "out.signature"),
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	data, err := os.ReadFile(sigPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	decoded, err := manifest.Decode(data)
	if err != nil {
		t.Fatalf("written manifest does not decode: %v", err)
	}

	if decoded.RootDigest != m.RootDigest {
		t.Fatalf("manifest on disk differs from returned manifest")
	}
	if decoded.PublicKeyFingerprint != keys.Fingerprint(pub) {
		t.Fatalf("fingerprint mismatch")
	}
	if decoded.Algorithms.Hash != "blake2b-512" {
		t.Fatalf("default hash = %q", decoded.Algorithms.Hash)
	}
	if len(decoded.Files) != 1 || decoded.Files[0].Path != "model.bin" {
		t.Fatalf("files = %v", decoded.Files)
	}
}

func TestSignMissingShardWritesNothing(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "model.safetensors.index.json")
	err := os.WriteFile(index, []byte(`{
		"weight_map": {"layer.0": "model-00001-of-00002.safetensors"}
	}`), 0o644)
	if err != nil {
		t.Fatalf("write index: %v", err)
	}

	_, priv, err := keys.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	sigPath := filepath.Join(dir, "model.signature")
	_, _, err = Sign(context.Background(), index, priv, Options{SignaturePath: sigPath})

	var missing *artifact.MissingReferenceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingReferenceError, got %v", err)
	}
	if _, statErr := os.Stat(sigPath); !os.IsNotExist(statErr) {
		t.Fatalf("signature file must not exist after a failed sign")
	}

	// No stray temp files either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(index) {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestSignaturePathFor(t *testing.T) {
	cases := map[string]string{
		"model.safetensors": "model.safetensors.signature",
		"models/dir":        "models/dir.signature",
		"models/dir/":       "models/dir.signature",
	}
	for in, want := range cases {
		if got := SignaturePathFor(in); got != want {
			t.Fatalf("SignaturePathFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSignUnsupportedHashAlgorithm(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, priv, err := keys.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, _, err = Sign(context.Background(), dir, priv, Options{
		HashAlgorithm: "md5",
		SignaturePath: filepath.Join(t.TempDir(), "s"),
	})
	if err == nil {
		t.Fatalf("expected error for unsupported hash algorithm")
	}
}
