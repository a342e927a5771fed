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

// Package crypto provides internal cryptographic primitives for artifact
// signing. External consumers should use the higher-level APIs in
// pkg/signing and pkg/verify instead.
package crypto

import "strconv"

// fileEncodingHeader versions the canonical encoding. Bump on any change to
// the encoding layout, never reuse.
const fileEncodingHeader = "TMANv1"

// FileEntry is one (path, digest, length) triple bound into a root digest.
type FileEntry struct {
	Path   string
	Digest []byte
	Size   int64
}

// EncodeFileEntries computes the canonical byte encoding of an ordered
// sequence of file entries, in the style of DSSE's Pre-Authentication
// Encoding: every variable-length field is preceded by its ASCII decimal
// length, so no combination of path, digest, and size values can collide
// with another sequence.
//
// Layout: "TMANv1" SP count { SP LEN(path) SP path SP LEN(digest) SP digest
// SP size } for each entry in the order given. Callers must sort entries
// before encoding; this function never reorders.
func EncodeFileEntries(entries []FileEntry) []byte {
	buf := []byte(fileEncodingHeader)
	buf = append(buf, ' ')
	buf = appendDecimal(buf, int64(len(entries)))

	for _, e := range entries {
		buf = append(buf, ' ')
		buf = appendDecimal(buf, int64(len(e.Path)))
		buf = append(buf, ' ')
		buf = append(buf, e.Path...)
		buf = append(buf, ' ')
		buf = appendDecimal(buf, int64(len(e.Digest)))
		buf = append(buf, ' ')
		buf = append(buf, e.Digest...)
		buf = append(buf, ' ')
		buf = appendDecimal(buf, e.Size)
	}

	return buf
}

func appendDecimal(buf []byte, n int64) []byte {
	return strconv.AppendInt(buf, n, 10)
}
