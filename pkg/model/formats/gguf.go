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
	"strings"

	parser "github.com/gpustack/gguf-parser-go"

	"github.com/dreadnode/tensor-man/pkg/model"
)

func init() {
	register(&ggufDecoder{})
}

// ggufDecoder reads GGUF files through gguf-parser-go. Quantized GGML
// element types are carried as opaque dtype names; their per-element width
// is derived from the parsed byte size.
type ggufDecoder struct{}

func (d *ggufDecoder) Format() model.Format {
	return model.FormatGGUF
}

func (d *ggufDecoder) Detect(path string, _ Scope) bool {
	return strings.EqualFold(filepath.Ext(path), ".gguf")
}

func (d *ggufDecoder) Decode(path string) (*model.CanonicalModel, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatGGUF, Path: path, Err: err}
	}

	gf, err := parser.ParseGGUFFile(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatGGUF, Path: path, Err: err}
	}

	m := &model.CanonicalModel{
		Format:   model.FormatGGUF,
		Path:     path,
		FileSize: uint64(info.Size()),
		Version:  fmt.Sprintf("%v", gf.Header.Version),
		Metadata: model.NewMetadata(),
	}

	for _, kv := range gf.Header.MetadataKV {
		m.Metadata.KV[kv.Key] = fmt.Sprintf("%v", kv.Value)
	}

	for _, ti := range gf.TensorInfos {
		elements := ti.Elements()
		bytes := ti.Bytes()

		var bits uint64
		if elements > 0 {
			bits = bytes * 8 / elements
		}

		m.Tensors = append(m.Tensors, model.TensorRecord{
			Name:   ti.Name,
			DType:  model.OpaqueDType(ti.Type.String(), bits),
			Shape:  ti.Dimensions,
			Offset: ti.Offset,
			Length: bytes,
		})
	}

	return m, nil
}

// BackingFiles expands a sharded GGUF filename (model-00001-of-00005.gguf)
// into its sibling shard references, relative to the file's directory. A
// single-file GGUF returns nil.
func (d *ggufDecoder) BackingFiles(path string) ([]string, error) {
	shards := parser.CompleteShardGGUFFilename(path)
	if len(shards) == 0 {
		return nil, nil
	}

	dir := filepath.Dir(path)
	self := filepath.Base(path)

	refs := make([]string, 0, len(shards))
	for _, shard := range shards {
		rel, err := filepath.Rel(dir, shard)
		if err != nil {
			rel = filepath.Base(shard)
		}
		if rel == self {
			continue
		}
		refs = append(refs, filepath.ToSlash(rel))
	}
	return refs, nil
}
