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
	"bytes"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/dreadnode/tensor-man/pkg/model"
)

//go:embed sandbox/Dockerfile sandbox/inspect.py sandbox/requirements.txt
var sandboxAssets embed.FS

func init() {
	register(&pyTorchDecoder{runner: &dockerRunner{}})
}

// pyTorchDecoder handles PyTorch checkpoints. Loading a pickle-based
// checkpoint can execute arbitrary code, so the file is never parsed in
// this process: a sandboxed, network-disabled container extracts the
// normalized listing and hands it back as JSON over stdout. This boundary
// is an RPC with no shared memory, not a library call.
type pyTorchDecoder struct {
	runner sandboxRunner
}

// sandboxRunner abstracts the isolated execution collaborator so tests can
// substitute a fake without a container runtime.
type sandboxRunner interface {
	// ExtractListing runs the sandboxed inspector against path and returns
	// the serialized listing it printed.
	ExtractListing(path string) ([]byte, error)
}

// sandboxListing is the wire schema the collaborator prints. It carries the
// already-safe normalized listing and nothing else.
type sandboxListing struct {
	Version  string            `json:"version"`
	Metadata map[string]string `json:"metadata"`
	Tensors  []struct {
		Name  string   `json:"name"`
		DType string   `json:"dtype"`
		Shape []uint64 `json:"shape"`
		Size  uint64   `json:"size"`
	} `json:"tensors"`
}

func (d *pyTorchDecoder) Format() model.Format {
	return model.FormatPyTorch
}

func (d *pyTorchDecoder) Detect(path string, _ Scope) bool {
	name := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(name)

	return ext == ".pt" || ext == ".pth" ||
		(strings.Contains(name, "pytorch_model") && strings.HasSuffix(name, ".bin"))
}

func (d *pyTorchDecoder) Decode(path string) (*model.CanonicalModel, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatPyTorch, Path: path, Err: err}
	}

	out, err := d.runner.ExtractListing(path)
	if err != nil {
		return nil, &DecodeError{Format: model.FormatPyTorch, Path: path, Err: err}
	}

	var listing sandboxListing
	if err := json.Unmarshal(out, &listing); err != nil {
		return nil, &DecodeError{Format: model.FormatPyTorch, Path: path,
			Err: fmt.Errorf("parse sandbox listing: %w", err)}
	}

	m := &model.CanonicalModel{
		Format:   model.FormatPyTorch,
		Path:     path,
		FileSize: uint64(info.Size()),
		Version:  listing.Version,
		Metadata: model.NewMetadata(),
	}
	for k, v := range listing.Metadata {
		m.Metadata.KV[k] = v
	}
	for _, t := range listing.Tensors {
		m.Tensors = append(m.Tensors, model.TensorRecord{
			Name:   t.Name,
			DType:  model.ParseDType(t.DType),
			Shape:  t.Shape,
			Length: t.Size,
		})
	}
	return m, nil
}

// dockerRunner executes the inspector inside a throwaway container with
// networking disabled and the checkpoint mounted read-only. The image is
// built on demand; its tag is derived from the asset contents, so changing
// any asset produces a new image instead of reusing a stale one.
type dockerRunner struct{}

func (r *dockerRunner) ExtractListing(path string) ([]byte, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker is required to inspect pytorch checkpoints: %w", err)
	}

	image, err := r.ensureImage()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("docker", "run", "--rm", "--network=none",
		"-v", abs+":/model:ro",
		image, "/model")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("sandbox inspector failed: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// ensureImage builds the inspector image unless a current one exists.
func (r *dockerRunner) ensureImage() (string, error) {
	image, err := r.imageTag()
	if err != nil {
		return "", err
	}

	out, err := exec.Command("docker", "images", "-q", image).Output()
	if err == nil && len(bytes.TrimSpace(out)) > 0 {
		return image, nil
	}

	dir, err := os.MkdirTemp("", "tensor-man-sandbox-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	for _, name := range []string{"Dockerfile", "inspect.py", "requirements.txt"} {
		data, err := sandboxAssets.ReadFile("sandbox/" + name)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return "", err
		}
	}

	var stderr bytes.Buffer
	build := exec.Command("docker", "build", "--quiet", "-t", image, dir)
	build.Stderr = &stderr
	if err := build.Run(); err != nil {
		return "", fmt.Errorf("build sandbox image: %w: %s", err, stderr.String())
	}
	return image, nil
}

// imageTag hashes the embedded assets into a deterministic image tag.
func (r *dockerRunner) imageTag() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, name := range []string{"Dockerfile", "inspect.py", "requirements.txt"} {
		data, err := sandboxAssets.ReadFile("sandbox/" + name)
		if err != nil {
			return "", err
		}
		_, _ = h.Write(data)
	}
	return "tensor-man-inspect:" + hex.EncodeToString(h.Sum(nil))[:16], nil
}
