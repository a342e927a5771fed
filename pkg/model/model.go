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

// Package model defines the canonical in-memory representation of a machine
// learning model, independent of its on-disk container format.
//
// A CanonicalModel is produced by a format adapter for each inspection or
// signing invocation and discarded afterwards; it is never cached across
// runs. The inspection surface (tensor listing, metadata, graph) and the
// signing surface (backing-file references) both hang off this one type.
package model

import (
	"sort"
	"strconv"
)

// Format identifies the container format a model was decoded from.
type Format string

const (
	// FormatSafeTensors is the safetensors container (JSON header + raw data).
	FormatSafeTensors Format = "safetensors"
	// FormatONNX is the ONNX protobuf container.
	FormatONNX Format = "onnx"
	// FormatGGUF is the GGUF container used by llama.cpp-style runtimes.
	FormatGGUF Format = "gguf"
	// FormatPyTorch marks listings obtained from the sandboxed PyTorch
	// collaborator; the core never parses these files itself.
	FormatPyTorch Format = "pytorch"
)

// String returns the format tag as a string.
func (f Format) String() string {
	return string(f)
}

// TensorRecord describes one tensor as declared by a model header. Records
// are immutable once constructed from a decoded header.
type TensorRecord struct {
	// Name uniquely identifies the tensor within its model.
	Name string
	// DType is the element type.
	DType DType
	// Shape is the ordered sequence of dimension sizes.
	Shape []uint64
	// Offset is the byte offset of the tensor data within its backing file.
	Offset uint64
	// Length is the byte length of the tensor data.
	Length uint64
}

// Elements returns the number of elements implied by the shape. A scalar
// (empty shape) has one element; a shape containing a zero dimension has
// none.
func (t TensorRecord) Elements() uint64 {
	n := uint64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// GraphNode is one operation node of a graph-bearing format (ONNX). The
// node list lives on the inspection surface only; the signing path never
// reads it.
type GraphNode struct {
	Name    string
	OpType  string
	Inputs  []string
	Outputs []string
}

// Metadata holds the free-form key/value metadata of a model plus, for
// graph-bearing formats, the ordered node list.
type Metadata struct {
	// KV maps producer/version/config keys to stringified values.
	KV map[string]string
	// Graph is the ordered operation node list, empty for non-graph formats.
	Graph []GraphNode
}

// NewMetadata returns an empty Metadata with an allocated KV map.
func NewMetadata() Metadata {
	return Metadata{KV: make(map[string]string)}
}

// SortedKeys returns the metadata keys in lexicographic order.
func (m Metadata) SortedKeys() []string {
	keys := make([]string, 0, len(m.KV))
	for k := range m.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CanonicalModel is the normalized view of one inspected model file.
type CanonicalModel struct {
	// Format tags which adapter produced this model.
	Format Format
	// Path is the absolute path of the decoded file.
	Path string
	// FileSize is the on-disk size of the decoded file in bytes.
	FileSize uint64
	// HeaderSize is the size of the container header in bytes, when the
	// format exposes one.
	HeaderSize uint64
	// Version is the container format version string.
	Version string
	// Tensors is the ordered tensor listing.
	Tensors []TensorRecord
	// Metadata holds key/value metadata and the optional graph listing.
	Metadata Metadata
	// BackingFiles lists relative paths of sibling files that hold tensor
	// bytes referenced by this file rather than stored inline (for example
	// sharded weight files named by an index manifest).
	BackingFiles []string
}

// NumTensors returns the number of tensors in the model.
func (m *CanonicalModel) NumTensors() int {
	return len(m.Tensors)
}

// DataSize returns the total tensor data size in bytes.
func (m *CanonicalModel) DataSize() uint64 {
	var total uint64
	for _, t := range m.Tensors {
		total += t.Length
	}
	return total
}

// AverageTensorSize returns the mean tensor data size in bytes, or zero for
// a model without tensors.
func (m *CanonicalModel) AverageTensorSize() uint64 {
	if len(m.Tensors) == 0 {
		return 0
	}
	return m.DataSize() / uint64(len(m.Tensors))
}

// UniqueShapes returns the distinct tensor shapes, sorted by element count
// so the smallest tensors come first.
func (m *CanonicalModel) UniqueShapes() [][]uint64 {
	seen := make(map[string][]uint64)
	for _, t := range m.Tensors {
		if len(t.Shape) == 0 {
			continue
		}
		seen[shapeKey(t.Shape)] = t.Shape
	}

	shapes := make([][]uint64, 0, len(seen))
	for _, s := range seen {
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool {
		vi, vj := shapeVolume(shapes[i]), shapeVolume(shapes[j])
		if vi != vj {
			return vi < vj
		}
		return shapeKey(shapes[i]) < shapeKey(shapes[j])
	})
	return shapes
}

// UniqueDTypes returns the distinct element type names, sorted.
func (m *CanonicalModel) UniqueDTypes() []string {
	seen := make(map[string]struct{})
	for _, t := range m.Tensors {
		seen[t.DType.String()] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func shapeVolume(shape []uint64) uint64 {
	v := uint64(1)
	for _, d := range shape {
		v *= d
	}
	return v
}

func shapeKey(shape []uint64) string {
	key := make([]byte, 0, len(shape)*4)
	for i, d := range shape {
		if i > 0 {
			key = append(key, 'x')
		}
		key = strconv.AppendUint(key, d, 10)
	}
	return string(key)
}
