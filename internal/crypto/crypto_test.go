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
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestEncodeFileEntriesDeterministic(t *testing.T) {
	entries := []FileEntry{
		{Path: "a.bin", Digest: []byte{1, 2, 3}, Size: 10},
		{Path: "b.bin", Digest: []byte{4, 5, 6}, Size: 20},
	}

	first := EncodeFileEntries(entries)
	second := EncodeFileEntries(entries)
	if !bytes.Equal(first, second) {
		t.Fatalf("encoding is not deterministic")
	}
}

func TestEncodeFileEntriesBindsNames(t *testing.T) {
	digestA := []byte{1, 2, 3}
	digestB := []byte{4, 5, 6}

	original := EncodeFileEntries([]FileEntry{
		{Path: "a.bin", Digest: digestA, Size: 3},
		{Path: "b.bin", Digest: digestB, Size: 3},
	})
	swapped := EncodeFileEntries([]FileEntry{
		{Path: "a.bin", Digest: digestB, Size: 3},
		{Path: "b.bin", Digest: digestA, Size: 3},
	})

	if bytes.Equal(original, swapped) {
		t.Fatalf("swapping digests between files did not change the encoding")
	}
}

func TestEncodeFileEntriesBindsSizes(t *testing.T) {
	a := EncodeFileEntries([]FileEntry{{Path: "f", Digest: []byte{9}, Size: 1}})
	b := EncodeFileEntries([]FileEntry{{Path: "f", Digest: []byte{9}, Size: 2}})
	if bytes.Equal(a, b) {
		t.Fatalf("size change did not change the encoding")
	}
}

func TestEncodeFileEntriesNoBoundaryConfusion(t *testing.T) {
	// A path containing spaces and digits must not collide with a shifted
	// field boundary.
	a := EncodeFileEntries([]FileEntry{{Path: "x 1", Digest: []byte("yy"), Size: 0}})
	b := EncodeFileEntries([]FileEntry{{Path: "x", Digest: []byte("1 yy"), Size: 0}})
	if bytes.Equal(a, b) {
		t.Fatalf("field boundaries are ambiguous")
	}
}

func TestSignVerifyEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	message := []byte("root digest bytes")
	sig, err := SignEd25519(priv, message)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := VerifyEd25519(pub, message, sig); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := VerifyEd25519(pub, []byte("tampered"), sig); err == nil {
		t.Fatalf("expected verification of tampered message to fail")
	}

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate second key: %v", err)
	}
	if err := VerifyEd25519(otherPub, message, sig); err == nil {
		t.Fatalf("expected verification with wrong key to fail")
	}
}

func TestSignEd25519RejectsShortKey(t *testing.T) {
	if _, err := SignEd25519(make([]byte, 5), []byte("m")); err == nil {
		t.Fatalf("expected error for truncated private key")
	}
}
