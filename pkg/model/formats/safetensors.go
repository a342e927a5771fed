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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dreadnode/tensor-man/pkg/model"
)

func init() {
	register(&safeTensorsDecoder{})
}

// maxSafeTensorsHeader bounds the JSON header size accepted from untrusted
// files. The format itself allows headers up to 100 MB; anything larger is
// corrupt or hostile.
const maxSafeTensorsHeader = 100 * 1024 * 1024

// safeTensorsDecoder reads the safetensors container: an 8-byte
// little-endian header length, a JSON header mapping tensor names to dtype,
// shape, and data offsets, and the raw tensor data. Tensor bytes are never
// read; only the header is parsed.
type safeTensorsDecoder struct{}

// safeTensorInfo mirrors one JSON header entry.
type safeTensorInfo struct {
	DType       string    `json:"dtype"`
	Shape       []uint64  `json:"shape"`
	DataOffsets [2]uint64 `json:"data_offsets"`
}

// safeTensorsIndex mirrors a *.safetensors.index.json manifest.
type safeTensorsIndex struct {
	Metadata  map[string]json.RawMessage `json:"metadata"`
	WeightMap map[string]string          `json:"weight_map"`
}

func (d *safeTensorsDecoder) Format() model.Format {
	return model.FormatSafeTensors
}

func (d *safeTensorsDecoder) Detect(path string, scope Scope) bool {
	isSafetensors := strings.EqualFold(filepath.Ext(path), ".safetensors")

	switch scope {
	case ScopeSigning:
		// An index manifest can be signed together with its shards, but
		// holds no tensor data to inspect.
		return isSafetensors || isSafeTensorsIndex(path)
	default:
		return isSafetensors
	}
}

func isSafeTensorsIndex(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), ".safetensors.index.json")
}

func (d *safeTensorsDecoder) Decode(path string) (*model.CanonicalModel, error) {
	if isSafeTensorsIndex(path) {
		return d.decodeIndex(path)
	}
	return d.decodeFile(path)
}

func (d *safeTensorsDecoder) decodeFile(path string) (*model.CanonicalModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path, Err: err}
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("read header length: %w", err)}
	}
	headerLen := binary.LittleEndian.Uint64(lenBuf[:])
	if headerLen == 0 || headerLen > maxSafeTensorsHeader {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("implausible header length %d", headerLen)}
	}
	if headerLen+8 > uint64(info.Size()) {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("header length %d exceeds file size %d", headerLen, info.Size())}
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("read header: %w", err)}
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerBuf, &header); err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("parse header: %w", err)}
	}

	m := &model.CanonicalModel{
		Format:     model.FormatSafeTensors,
		Path:       path,
		FileSize:   uint64(info.Size()),
		HeaderSize: headerLen,
		Version:    "0.x",
		Metadata:   model.NewMetadata(),
	}

	dataStart := 8 + headerLen
	for name, raw := range header {
		if name == "__metadata__" {
			var kv map[string]string
			if err := json.Unmarshal(raw, &kv); err != nil {
				return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
					Err: fmt.Errorf("parse __metadata__: %w", err)}
			}
			for k, v := range kv {
				m.Metadata.KV[k] = v
			}
			continue
		}

		var ti safeTensorInfo
		if err := json.Unmarshal(raw, &ti); err != nil {
			return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
				Err: fmt.Errorf("parse tensor %q: %w", name, err)}
		}
		if ti.DataOffsets[1] < ti.DataOffsets[0] {
			return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
				Err: fmt.Errorf("tensor %q has inverted data offsets", name)}
		}

		m.Tensors = append(m.Tensors, model.TensorRecord{
			Name:   name,
			DType:  model.ParseDType(ti.DType),
			Shape:  ti.Shape,
			Offset: dataStart + ti.DataOffsets[0],
			Length: ti.DataOffsets[1] - ti.DataOffsets[0],
		})
	}

	// The JSON header is a map; order tensors by data offset so listings
	// are deterministic and follow file layout.
	sort.Slice(m.Tensors, func(i, j int) bool {
		if m.Tensors[i].Offset != m.Tensors[j].Offset {
			return m.Tensors[i].Offset < m.Tensors[j].Offset
		}
		return m.Tensors[i].Name < m.Tensors[j].Name
	})

	return m, nil
}

// decodeIndex parses a sharded-checkpoint index manifest. The resulting
// model carries no tensors, only the deduplicated backing-file references
// the artifact resolver needs.
func (d *safeTensorsDecoder) decodeIndex(path string) (*model.CanonicalModel, error) {
	refs, meta, err := readSafeTensorsIndex(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatSafeTensors, Path: path, Err: err}
	}

	m := &model.CanonicalModel{
		Format:       model.FormatSafeTensors,
		Path:         path,
		FileSize:     uint64(info.Size()),
		Version:      "0.x",
		Metadata:     model.NewMetadata(),
		BackingFiles: refs,
	}
	for k, v := range meta {
		m.Metadata.KV[k] = v
	}
	return m, nil
}

// BackingFiles returns the shard files named by an index manifest, relative
// to the manifest's directory, deduplicated and sorted. A plain safetensors
// file is self-contained and returns nil.
func (d *safeTensorsDecoder) BackingFiles(path string) ([]string, error) {
	if !isSafeTensorsIndex(path) {
		return nil, nil
	}
	refs, _, err := readSafeTensorsIndex(path)
	return refs, err
}

func readSafeTensorsIndex(path string) ([]string, map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &DecodeError{Format: model.FormatSafeTensors, Path: path, Err: err}
	}

	var index safeTensorsIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("parse index: %w", err)}
	}
	if len(index.WeightMap) == 0 {
		return nil, nil, &DecodeError{Format: model.FormatSafeTensors, Path: path,
			Err: fmt.Errorf("index has no weight_map")}
	}

	unique := make(map[string]struct{}, len(index.WeightMap))
	for _, shard := range index.WeightMap {
		unique[filepath.ToSlash(shard)] = struct{}{}
	}

	refs := make([]string, 0, len(unique))
	for shard := range unique {
		refs = append(refs, shard)
	}
	sort.Strings(refs)

	meta := make(map[string]string, len(index.Metadata))
	for k, v := range index.Metadata {
		meta[k] = strings.Trim(string(v), `"`)
	}

	return refs, meta, nil
}
