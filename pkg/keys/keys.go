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

// Package keys manages Ed25519 signing keys: generation, PEM persistence,
// loading, and public key fingerprints.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

const (
	privateKeyBlockType = "PRIVATE KEY"
	publicKeyBlockType  = "PUBLIC KEY"
)

// InvalidKeyMaterialError reports key material that could not be used:
// malformed PEM, an unexpected block type, or a key of the wrong
// algorithm.
type InvalidKeyMaterialError struct {
	Path   string
	Reason string
}

func (e *InvalidKeyMaterialError) Error() string {
	return fmt.Sprintf("invalid key material in %q: %s", e.Path, e.Reason)
}

// Generate creates a fresh Ed25519 keypair from the operating system's
// entropy source.
func Generate() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ed25519 keypair: %w", err)
	}
	return pub, priv, nil
}

// SavePrivateKey writes the private key as a PKCS#8 PEM file readable only
// by the owner.
func SavePrivateKey(path string, key ed25519.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: privateKeyBlockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write private key %q: %w", path, err)
	}
	return nil
}

// SavePublicKey writes the public key as a PKIX PEM file.
func SavePublicKey(path string, key ed25519.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: publicKeyBlockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write public key %q: %w", path, err)
	}
	return nil
}

// LoadPrivateKey reads an Ed25519 private key from a PKCS#8 PEM file.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	block, err := readPEMBlock(path, privateKeyBlockType)
	if err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, &InvalidKeyMaterialError{Path: path, Reason: err.Error()}
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, &InvalidKeyMaterialError{Path: path, Reason: fmt.Sprintf("not an ed25519 key (%T)", parsed)}
	}
	return key, nil
}

// LoadPublicKey reads an Ed25519 public key from a PKIX PEM file.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	block, err := readPEMBlock(path, publicKeyBlockType)
	if err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &InvalidKeyMaterialError{Path: path, Reason: err.Error()}
	}
	key, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, &InvalidKeyMaterialError{Path: path, Reason: fmt.Sprintf("not an ed25519 key (%T)", parsed)}
	}
	return key, nil
}

func readPEMBlock(path, blockType string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file %q: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, &InvalidKeyMaterialError{Path: path, Reason: "no PEM block found"}
	}
	if block.Type != blockType {
		return nil, &InvalidKeyMaterialError{Path: path,
			Reason: fmt.Sprintf("unexpected PEM block type %q, want %q", block.Type, blockType)}
	}
	return block, nil
}

// Fingerprint returns the lowercase hex BLAKE2b-512 digest of the raw
// public key bytes. Manifests record this so a verifier can tell which
// key a signature was made with before checking it.
func Fingerprint(key ed25519.PublicKey) string {
	sum := blake2b.Sum512(key)
	return hex.EncodeToString(sum[:])
}
