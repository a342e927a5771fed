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

// Package formats implements the container format adapters that produce a
// CanonicalModel from a file on disk.
//
// Each adapter implements the Decoder interface, and dispatch happens by
// asking every registered adapter whether it handles a path. The rest of
// the system consumes only the CanonicalModel; format-specific details
// never leak past this package.
package formats

import (
	"errors"
	"fmt"

	"github.com/dreadnode/tensor-man/pkg/model"
)

// Decoder is the capability interface implemented by each format adapter.
type Decoder interface {
	// Format returns the format tag this adapter produces.
	Format() model.Format

	// Detect reports whether this adapter handles the file at path for the
	// given scope. Detection is the adapter's own business; callers never
	// inspect file names themselves.
	Detect(path string, scope Scope) bool

	// Decode parses the file at path into a CanonicalModel. Failures are
	// reported as a *DecodeError.
	Decode(path string) (*model.CanonicalModel, error)
}

// Scope distinguishes why an adapter is being selected. Some adapters accept
// more inputs for signing than for inspection: a safetensors index manifest
// can be signed (together with its shards) but holds no tensors to inspect.
type Scope int

const (
	// ScopeInspection selects adapters for reading model structure.
	ScopeInspection Scope = iota
	// ScopeSigning selects adapters for resolving the files to sign.
	ScopeSigning
)

// DecodeError reports a malformed or unreadable source format.
type DecodeError struct {
	Format model.Format
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s file %q: %v", e.Format, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrUnknownFormat is returned when no adapter claims a path.
var ErrUnknownFormat = errors.New("unsupported file format")

// decoders holds the registered adapters in dispatch order. Registration
// happens at package init; the slice is read-only afterwards, so no lock.
var decoders []Decoder

func register(d Decoder) {
	decoders = append(decoders, d)
}

// ByFormat returns the adapter for an explicit format tag, overriding
// detection.
func ByFormat(format model.Format) (Decoder, error) {
	for _, d := range decoders {
		if d.Format() == format {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// DecoderFor selects the adapter handling path for the given scope. When
// format is non-empty it forces that adapter regardless of detection.
func DecoderFor(path string, format model.Format, scope Scope) (Decoder, error) {
	if format != "" {
		return ByFormat(format)
	}
	for _, d := range decoders {
		if d.Detect(path, scope) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Decode selects an adapter for path and decodes it. An empty format tag
// enables detection.
func Decode(path string, format model.Format) (*model.CanonicalModel, error) {
	d, err := DecoderFor(path, format, ScopeInspection)
	if err != nil {
		return nil, err
	}
	return d.Decode(path)
}

// backingFileLister is implemented by adapters whose files can reference
// companion shards or external data.
type backingFileLister interface {
	BackingFiles(path string) ([]string, error)
}

// BackingFiles returns the backing-file references declared by the file at
// path, or nil when the path is self-contained or no adapter claims it.
// The artifact resolver uses this to expand index manifests into their
// shard sets without requiring a full inspection decode.
func BackingFiles(path string) ([]string, error) {
	d, err := DecoderFor(path, "", ScopeSigning)
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			return nil, nil
		}
		return nil, err
	}

	lister, ok := d.(backingFileLister)
	if !ok {
		return nil, nil
	}
	return lister.BackingFiles(path)
}
