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

package options

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Detail levels for the inspect command.
const (
	DetailBrief = "brief"
	DetailFull  = "full"
)

// InspectOptions holds the flags of the inspect command.
type InspectOptions struct {
	// Format overrides file format detection (safetensors, gguf, onnx,
	// pytorch). Empty enables detection by extension.
	Format string
	// Detail selects brief or full output.
	Detail string
	// Filter restricts full tensor listings to names containing this
	// substring.
	Filter string
	// ToJSON writes the inspection report as JSON to the given path.
	ToJSON string
}

var _ Interface = (*InspectOptions)(nil)

// AddFlags registers the inspect flags.
func (o *InspectOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Format, "format", "",
		"override file format detection (safetensors, gguf, onnx, pytorch)")
	cmd.Flags().StringVarP(&o.Detail, "detail", "D", DetailBrief,
		"detail level (brief, full)")
	cmd.Flags().StringVarP(&o.Filter, "filter", "F", "",
		"with full detail, only show tensors whose name contains this substring")
	cmd.Flags().StringVarP(&o.ToJSON, "to-json", "J", "",
		"save the inspection report as JSON to the given file")
}

// Validate rejects flag combinations the command cannot honor.
func (o *InspectOptions) Validate() error {
	if o.Detail != DetailBrief && o.Detail != DetailFull {
		return fmt.Errorf("invalid detail level %q (valid: %s, %s)", o.Detail, DetailBrief, DetailFull)
	}
	if o.Filter != "" && o.Detail != DetailFull {
		return fmt.Errorf("--filter requires --detail full")
	}
	return nil
}
