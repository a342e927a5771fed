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
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dreadnode/tensor-man/pkg/model"
)

type fakeRunner struct {
	output []byte
	err    error
	path   string
}

func (r *fakeRunner) ExtractListing(path string) ([]byte, error) {
	r.path = path
	return r.output, r.err
}

func TestPyTorchDetect(t *testing.T) {
	d := &pyTorchDecoder{}

	for _, path := range []string{
		"model.pt",
		"checkpoint.PTH",
		"pytorch_model.bin",
		"pytorch_model-00001-of-00002.bin",
	} {
		if !d.Detect(path, ScopeInspection) {
			t.Fatalf("expected %q to be detected", path)
		}
	}
	for _, path := range []string{"model.safetensors", "weights.bin", "model.onnx"} {
		if d.Detect(path, ScopeInspection) {
			t.Fatalf("did not expect %q to be detected", path)
		}
	}
}

func TestPyTorchDecodeParsesListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pt")
	if err := os.WriteFile(path, []byte("pickled"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := &fakeRunner{output: []byte(`{
		"version": "2.5.1",
		"metadata": {"epoch": "12"},
		"tensors": [
			{"name": "fc.bias", "dtype": "float32", "shape": [10], "size": 40},
			{"name": "fc.weight", "dtype": "float32", "shape": [10, 784], "size": 31360}
		]
	}`)}
	d := &pyTorchDecoder{runner: runner}

	m, err := d.Decode(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if runner.path != path {
		t.Fatalf("runner received %q", runner.path)
	}
	if m.Format != model.FormatPyTorch {
		t.Fatalf("format = %s", m.Format)
	}
	if m.Version != "2.5.1" {
		t.Fatalf("version = %q", m.Version)
	}
	if m.Metadata.KV["epoch"] != "12" {
		t.Fatalf("metadata = %v", m.Metadata.KV)
	}
	if m.NumTensors() != 2 {
		t.Fatalf("tensors = %d", m.NumTensors())
	}
	if m.DataSize() != 40+31360 {
		t.Fatalf("data size = %d", m.DataSize())
	}
	if !reflect.DeepEqual(m.Tensors[1].Shape, []uint64{10, 784}) {
		t.Fatalf("shape = %v", m.Tensors[1].Shape)
	}
}

func TestPyTorchDecodeSandboxFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pt")
	if err := os.WriteFile(path, []byte("pickled"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := &pyTorchDecoder{runner: &fakeRunner{err: errors.New("docker not found")}}

	_, err := d.Decode(path)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Format != model.FormatPyTorch {
		t.Fatalf("error format = %s", decodeErr.Format)
	}
}

func TestPyTorchDecodeBadListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pt")
	if err := os.WriteFile(path, []byte("pickled"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := &pyTorchDecoder{runner: &fakeRunner{output: []byte("traceback: boom")}}

	var decodeErr *DecodeError
	if _, err := d.Decode(path); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestPyTorchDecodeMissingFile(t *testing.T) {
	d := &pyTorchDecoder{runner: &fakeRunner{output: []byte("{}")}}

	var decodeErr *DecodeError
	if _, err := d.Decode(filepath.Join(t.TempDir(), "absent.pt")); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
