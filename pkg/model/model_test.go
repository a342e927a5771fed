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

import (
	"reflect"
	"testing"
)

func TestTensorRecordElements(t *testing.T) {
	cases := []struct {
		shape []uint64
		want  uint64
	}{
		{nil, 1},
		{[]uint64{7}, 7},
		{[]uint64{2, 3, 4}, 24},
		{[]uint64{5, 0, 2}, 0},
	}
	for _, c := range cases {
		got := TensorRecord{Shape: c.shape}.Elements()
		if got != c.want {
			t.Fatalf("Elements(%v) = %d, want %d", c.shape, got, c.want)
		}
	}
}

func TestCanonicalModelAggregates(t *testing.T) {
	m := &CanonicalModel{
		Tensors: []TensorRecord{
			{Name: "a", DType: DTypeF32, Shape: []uint64{2, 2}, Length: 16},
			{Name: "b", DType: DTypeF32, Shape: []uint64{2, 2}, Length: 16},
			{Name: "c", DType: DTypeF16, Shape: []uint64{8}, Length: 16},
		},
	}

	if m.NumTensors() != 3 {
		t.Fatalf("NumTensors = %d", m.NumTensors())
	}
	if m.DataSize() != 48 {
		t.Fatalf("DataSize = %d", m.DataSize())
	}
	if m.AverageTensorSize() != 16 {
		t.Fatalf("AverageTensorSize = %d", m.AverageTensorSize())
	}

	if got, want := m.UniqueDTypes(), []string{"F16", "F32"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueDTypes = %v, want %v", got, want)
	}

	shapes := m.UniqueShapes()
	want := [][]uint64{{2, 2}, {8}}
	if !reflect.DeepEqual(shapes, want) {
		t.Fatalf("UniqueShapes = %v, want %v", shapes, want)
	}
}

func TestAverageTensorSizeEmptyModel(t *testing.T) {
	m := &CanonicalModel{}
	if m.AverageTensorSize() != 0 {
		t.Fatalf("expected zero average for empty model")
	}
}

func TestMetadataSortedKeys(t *testing.T) {
	meta := NewMetadata()
	meta.KV["zeta"] = "1"
	meta.KV["alpha"] = "2"
	meta.KV["mid"] = "3"

	if got, want := meta.SortedKeys(), []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys = %v, want %v", got, want)
	}
}

func TestParseDType(t *testing.T) {
	if d := ParseDType("f32"); d.String() != "F32" || d.Bits() != 32 {
		t.Fatalf("ParseDType(f32) = %s/%d", d, d.Bits())
	}
	if d := ParseDType("BF16"); d.Bits() != 16 {
		t.Fatalf("ParseDType(BF16) bits = %d", d.Bits())
	}

	// Unknown names pass through as opaque zero-width types.
	d := ParseDType("q4_k")
	if d.String() != "q4_k" || d.Bits() != 0 {
		t.Fatalf("opaque dtype = %s/%d", d, d.Bits())
	}
}

func TestDTypeByteSize(t *testing.T) {
	if got := DTypeF64.ByteSize(10); got != 80 {
		t.Fatalf("F64 byte size = %d", got)
	}
	if got := DTypeBool.ByteSize(3); got != 3 {
		t.Fatalf("Bool byte size = %d", got)
	}
	if got := OpaqueDType("mystery", 0).ByteSize(100); got != 0 {
		t.Fatalf("opaque byte size = %d", got)
	}
}
