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

package model

import "strings"

// DType is a tensor element type. The enumerated values cover the common
// fixed-width types; quantized or otherwise exotic types (GGML block
// formats) are carried through as opaque names so no adapter has to drop
// information.
type DType struct {
	name string
	bits uint64
}

// Enumerated element types.
var (
	DTypeF16    = DType{"F16", 16}
	DTypeF32    = DType{"F32", 32}
	DTypeF64    = DType{"F64", 64}
	DTypeBF16   = DType{"BF16", 16}
	DTypeI8     = DType{"I8", 8}
	DTypeI16    = DType{"I16", 16}
	DTypeI32    = DType{"I32", 32}
	DTypeI64    = DType{"I64", 64}
	DTypeU8     = DType{"U8", 8}
	DTypeU16    = DType{"U16", 16}
	DTypeU32    = DType{"U32", 32}
	DTypeU64    = DType{"U64", 64}
	DTypeBool   = DType{"BOOL", 8}
	DTypeF8E4M3 = DType{"F8_E4M3", 8}
	DTypeF8E5M2 = DType{"F8_E5M2", 8}
)

var dtypeByName = map[string]DType{}

func init() {
	for _, dt := range []DType{
		DTypeF16, DTypeF32, DTypeF64, DTypeBF16,
		DTypeI8, DTypeI16, DTypeI32, DTypeI64,
		DTypeU8, DTypeU16, DTypeU32, DTypeU64,
		DTypeBool, DTypeF8E4M3, DTypeF8E5M2,
	} {
		dtypeByName[dt.name] = dt
	}

	// Torch-style spellings map onto the same types.
	for alias, dt := range map[string]DType{
		"FLOAT16":  DTypeF16,
		"FLOAT32":  DTypeF32,
		"FLOAT64":  DTypeF64,
		"BFLOAT16": DTypeBF16,
		"INT8":     DTypeI8,
		"INT16":    DTypeI16,
		"INT32":    DTypeI32,
		"INT64":    DTypeI64,
		"UINT8":    DTypeU8,
		"UINT16":   DTypeU16,
		"UINT32":   DTypeU32,
		"UINT64":   DTypeU64,
	} {
		dtypeByName[alias] = dt
	}
}

// ParseDType resolves a dtype name (case-insensitive) to one of the
// enumerated types. Unknown names become opaque types with zero bit width,
// preserving the name for display.
func ParseDType(name string) DType {
	if dt, ok := dtypeByName[strings.ToUpper(name)]; ok {
		return dt
	}
	return DType{name: name}
}

// OpaqueDType builds a DType for a format-specific element type with a known
// per-element bit width (for example GGML quantized block types).
func OpaqueDType(name string, bits uint64) DType {
	return DType{name: name, bits: bits}
}

// String returns the dtype name.
func (d DType) String() string {
	return d.name
}

// Bits returns the per-element bit width, or zero when unknown.
func (d DType) Bits() uint64 {
	return d.bits
}

// ByteSize returns the data size in bytes of a tensor with this element
// type and the given element count. Returns zero when the bit width is
// unknown.
func (d DType) ByteSize(elements uint64) uint64 {
	return elements * d.bits / 8
}
