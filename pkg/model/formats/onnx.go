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

package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dreadnode/tensor-man/pkg/model"
)

func init() {
	register(&onnxDecoder{})
}

// onnxDecoder reads ONNX model files. The ModelProto is scanned directly
// with the protobuf wire format (protowire) rather than generated stubs:
// only the handful of fields feeding the canonical representation are
// decoded, everything else is skipped field-by-field.
type onnxDecoder struct{}

// ModelProto field numbers (onnx.proto3).
const (
	onnxModelIRVersion      = 1
	onnxModelProducerName   = 2
	onnxModelProducerVer    = 3
	onnxModelDomain         = 4
	onnxModelVersion        = 5
	onnxModelDocString      = 6
	onnxModelGraph          = 7
	onnxModelOpsetImport    = 8
	onnxModelMetadataProps  = 14
	onnxOpsetDomain         = 1
	onnxOpsetVersion        = 2
	onnxGraphNode           = 1
	onnxGraphName           = 2
	onnxGraphInitializer    = 5
	onnxNodeInput           = 1
	onnxNodeOutput          = 2
	onnxNodeName            = 3
	onnxNodeOpType          = 4
	onnxTensorDims          = 1
	onnxTensorDataType      = 2
	onnxTensorName          = 8
	onnxTensorRawData       = 9
	onnxTensorExternalData  = 13
	onnxTensorDataLocation  = 14
	onnxStringEntryKey      = 1
	onnxStringEntryValue    = 2
	onnxDataLocationDefault = 0
	onnxDataLocationExt     = 1
)

func (d *onnxDecoder) Format() model.Format {
	return model.FormatONNX
}

func (d *onnxDecoder) Detect(path string, _ Scope) bool {
	return strings.EqualFold(filepath.Ext(path), ".onnx")
}

func (d *onnxDecoder) Decode(path string) (*model.CanonicalModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatONNX, Path: path, Err: err}
	}

	m := &model.CanonicalModel{
		Format:   model.FormatONNX,
		Path:     path,
		FileSize: uint64(len(raw)),
		Metadata: model.NewMetadata(),
	}

	if err := d.scanModel(raw, m); err != nil {
		return nil, &DecodeError{Format: model.FormatONNX, Path: path, Err: err}
	}
	return m, nil
}

// BackingFiles returns the external-data files referenced by initializers
// with data_location EXTERNAL, relative to the model's directory.
func (d *onnxDecoder) BackingFiles(path string) ([]string, error) {
	m, err := d.Decode(path)
	if err != nil {
		return nil, err
	}
	return m.BackingFiles, nil
}

func (d *onnxDecoder) scanModel(buf []byte, m *model.CanonicalModel) error {
	var opsets []string

	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxModelIRVersion:
			m.Version = "ir " + strconv.FormatUint(val.varint, 10)
		case onnxModelProducerName:
			m.Metadata.KV["producer_name"] = string(val.bytes)
		case onnxModelProducerVer:
			m.Metadata.KV["producer_version"] = string(val.bytes)
		case onnxModelDomain:
			if len(val.bytes) > 0 {
				m.Metadata.KV["domain"] = string(val.bytes)
			}
		case onnxModelVersion:
			m.Metadata.KV["model_version"] = strconv.FormatUint(val.varint, 10)
		case onnxModelDocString:
			if len(val.bytes) > 0 {
				m.Metadata.KV["doc_string"] = string(val.bytes)
			}
		case onnxModelGraph:
			return d.scanGraph(val.bytes, m)
		case onnxModelOpsetImport:
			domain, version, err := scanOpset(val.bytes)
			if err != nil {
				return err
			}
			if domain == "" {
				domain = "ai.onnx"
			}
			opsets = append(opsets, fmt.Sprintf("%s v%d", domain, version))
		case onnxModelMetadataProps:
			key, value, err := scanStringEntry(val.bytes)
			if err != nil {
				return err
			}
			m.Metadata.KV[key] = value
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(opsets) > 0 {
		m.Metadata.KV["opset_imports"] = strings.Join(opsets, ", ")
	}
	return nil
}

func (d *onnxDecoder) scanGraph(buf []byte, m *model.CanonicalModel) error {
	refs := make(map[string]struct{})

	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxGraphName:
			m.Metadata.KV["graph_name"] = string(val.bytes)
		case onnxGraphNode:
			node, err := scanNode(val.bytes)
			if err != nil {
				return err
			}
			m.Metadata.Graph = append(m.Metadata.Graph, node)
		case onnxGraphInitializer:
			record, external, err := scanInitializer(val.bytes)
			if err != nil {
				return err
			}
			m.Tensors = append(m.Tensors, record)
			if external != "" {
				refs[filepath.ToSlash(external)] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for ref := range refs {
		m.BackingFiles = append(m.BackingFiles, ref)
	}
	sort.Strings(m.BackingFiles)
	return nil
}

func scanNode(buf []byte) (model.GraphNode, error) {
	var node model.GraphNode
	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxNodeInput:
			node.Inputs = append(node.Inputs, string(val.bytes))
		case onnxNodeOutput:
			node.Outputs = append(node.Outputs, string(val.bytes))
		case onnxNodeName:
			node.Name = string(val.bytes)
		case onnxNodeOpType:
			node.OpType = string(val.bytes)
		}
		return nil
	})
	return node, err
}

// scanInitializer decodes one TensorProto. It returns the tensor record and,
// when the tensor stores its bytes externally, the referenced location.
func scanInitializer(buf []byte) (model.TensorRecord, string, error) {
	var (
		record   model.TensorRecord
		dataType uint64
		rawLen   uint64
		location string
		external bool
	)

	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxTensorDims:
			if val.packed {
				dims, err := scanPackedVarints(val.bytes)
				if err != nil {
					return err
				}
				record.Shape = append(record.Shape, dims...)
			} else {
				record.Shape = append(record.Shape, val.varint)
			}
		case onnxTensorDataType:
			dataType = val.varint
		case onnxTensorName:
			record.Name = string(val.bytes)
		case onnxTensorRawData:
			rawLen = uint64(len(val.bytes))
		case onnxTensorDataLocation:
			external = val.varint == onnxDataLocationExt
		case onnxTensorExternalData:
			key, value, err := scanStringEntry(val.bytes)
			if err != nil {
				return err
			}
			if key == "location" {
				location = value
			}
		}
		return nil
	})
	if err != nil {
		return model.TensorRecord{}, "", err
	}

	record.DType = onnxDType(dataType)
	if rawLen > 0 {
		record.Length = rawLen
	} else {
		record.Length = record.DType.ByteSize(record.Elements())
	}

	if !external {
		location = ""
	}
	return record, location, nil
}

func scanOpset(buf []byte) (string, uint64, error) {
	var domain string
	var version uint64
	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxOpsetDomain:
			domain = string(val.bytes)
		case onnxOpsetVersion:
			version = val.varint
		}
		return nil
	})
	return domain, version, err
}

func scanStringEntry(buf []byte) (string, string, error) {
	var key, value string
	err := scanFields(buf, func(num protowire.Number, val fieldValue) error {
		switch num {
		case onnxStringEntryKey:
			key = string(val.bytes)
		case onnxStringEntryValue:
			value = string(val.bytes)
		}
		return nil
	})
	return key, value, err
}

// fieldValue carries the decoded payload of one wire field. Varint fields
// populate varint; length-delimited fields populate bytes with packed set,
// since repeated numeric fields may arrive packed into one bytes field.
type fieldValue struct {
	varint uint64
	bytes  []byte
	packed bool
}

// scanFields walks every top-level field of a message and invokes fn with
// the field number and its decoded value. Unknown fields and wire types are
// skipped, matching protobuf's forward-compatibility rules.
func scanFields(buf []byte, fn func(num protowire.Number, val fieldValue) error) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("malformed protobuf tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return fmt.Errorf("malformed varint for field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
			if err := fn(num, fieldValue{varint: v}); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return fmt.Errorf("malformed bytes for field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
			if err := fn(num, fieldValue{bytes: v, packed: true}); err != nil {
				return err
			}
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(buf)
			if n < 0 {
				return fmt.Errorf("malformed fixed32 for field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
			if err := fn(num, fieldValue{varint: uint64(v)}); err != nil {
				return err
			}
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return fmt.Errorf("malformed fixed64 for field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
			if err := fn(num, fieldValue{varint: v}); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return fmt.Errorf("malformed field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
		}
	}
	return nil
}

func scanPackedVarints(buf []byte) ([]uint64, error) {
	var out []uint64
	for len(buf) > 0 {
		v, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("malformed packed varint: %w", protowire.ParseError(n))
		}
		buf = buf[n:]
		out = append(out, v)
	}
	return out, nil
}

// onnxDType maps TensorProto.DataType values to element types.
func onnxDType(v uint64) model.DType {
	switch v {
	case 1:
		return model.DTypeF32
	case 2:
		return model.DTypeU8
	case 3:
		return model.DTypeI8
	case 4:
		return model.DTypeU16
	case 5:
		return model.DTypeI16
	case 6:
		return model.DTypeI32
	case 7:
		return model.DTypeI64
	case 9:
		return model.DTypeBool
	case 10:
		return model.DTypeF16
	case 11:
		return model.DTypeF64
	case 12:
		return model.DTypeU32
	case 13:
		return model.DTypeU64
	case 16:
		return model.DTypeBF16
	case 17:
		return model.DTypeF8E4M3
	case 19:
		return model.DTypeF8E5M2
	default:
		return model.OpaqueDType(fmt.Sprintf("onnx(%d)", v), 0)
	}
}
