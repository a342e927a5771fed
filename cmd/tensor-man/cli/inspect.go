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

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dreadnode/tensor-man/cmd/tensor-man/cli/options"
	"github.com/dreadnode/tensor-man/pkg/model"
	"github.com/dreadnode/tensor-man/pkg/model/formats"
	"github.com/dreadnode/tensor-man/pkg/utils"
)

// Inspect builds the inspect subcommand.
func Inspect() *cobra.Command {
	o := &options.InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Inspect a model file and show its tensors and metadata.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := utils.ValidateFileExists("file", args[0]); err != nil {
				return err
			}

			m, err := formats.Decode(args[0], model.Format(o.Format))
			if err != nil {
				return err
			}

			if o.ToJSON != "" {
				if err := writeInspectJSON(o.ToJSON, m, o.Detail == options.DetailFull); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", o.ToJSON)
				return nil
			}

			renderSummary(cmd, m)
			if o.Detail == options.DetailFull {
				renderTensors(cmd, m, o.Filter)
			}
			return nil
		},
	}
	o.AddFlags(cmd)
	return cmd
}

func renderSummary(cmd *cobra.Command, m *model.CanonicalModel) {
	out := cmd.OutOrStdout()

	title := color.New(color.Bold).Sprintf("%s (%s", m.Path, m.Format)
	if m.Version != "" {
		title += " " + m.Version
	}
	fmt.Fprintln(out, title+")")
	fmt.Fprintln(out)

	shapes := make([]string, 0, len(m.UniqueShapes()))
	for _, s := range m.UniqueShapes() {
		shapes = append(shapes, shapeString(s))
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"File size", humanBytes(m.FileSize)})
	if m.HeaderSize > 0 {
		table.Append([]string{"Header size", humanBytes(m.HeaderSize)})
	}
	table.Append([]string{"Tensors", fmt.Sprintf("%d", m.NumTensors())})
	table.Append([]string{"Data size", humanBytes(m.DataSize())})
	table.Append([]string{"Avg tensor size", humanBytes(m.AverageTensorSize())})
	table.Append([]string{"Data types", strings.Join(m.UniqueDTypes(), ", ")})
	table.Append([]string{"Shapes", strings.Join(shapes, " ")})
	if len(m.BackingFiles) > 0 {
		table.Append([]string{"Backing files", strings.Join(m.BackingFiles, ", ")})
	}
	table.Render()

	if len(m.Metadata.KV) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.New(color.Bold).Sprint("Metadata"))
		meta := tablewriter.NewWriter(out)
		meta.SetHeader([]string{"Key", "Value"})
		for _, k := range m.Metadata.SortedKeys() {
			meta.Append([]string{k, clip(m.Metadata.KV[k], 80)})
		}
		meta.Render()
	}
}

func renderTensors(cmd *cobra.Command, m *model.CanonicalModel, filter string) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Tensors"))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "DType", "Shape", "Size"})

	shown := 0
	for _, t := range m.Tensors {
		if filter != "" && !strings.Contains(t.Name, filter) {
			continue
		}
		table.Append([]string{t.Name, t.DType.String(), shapeString(t.Shape), humanBytes(t.Length)})
		shown++
	}
	table.Render()

	if filter != "" {
		fmt.Fprintf(out, "%d of %d tensors match %q\n", shown, len(m.Tensors), filter)
	}

	if len(m.Metadata.Graph) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, color.New(color.Bold).Sprint("Graph"))
		graph := tablewriter.NewWriter(out)
		graph.SetHeader([]string{"Op", "Name", "Inputs", "Outputs"})
		for _, n := range m.Metadata.Graph {
			graph.Append([]string{n.OpType, n.Name,
				strings.Join(n.Inputs, ", "), strings.Join(n.Outputs, ", ")})
		}
		graph.Render()
	}
}

// inspectReport is the JSON document written by --to-json.
type inspectReport struct {
	FilePath     string            `json:"file_path"`
	FileType     string            `json:"file_type"`
	FileSize     uint64            `json:"file_size"`
	HeaderSize   uint64            `json:"header_size,omitempty"`
	Version      string            `json:"version,omitempty"`
	NumTensors   int               `json:"num_tensors"`
	DataSize     uint64            `json:"data_size"`
	UniqueShapes [][]uint64        `json:"unique_shapes"`
	UniqueDTypes []string          `json:"unique_dtypes"`
	Metadata     map[string]string `json:"metadata"`
	Tensors      []reportTensor    `json:"tensors,omitempty"`
}

type reportTensor struct {
	Name  string   `json:"id"`
	DType string   `json:"dtype"`
	Shape []uint64 `json:"shape"`
	Size  uint64   `json:"size"`
}

func writeInspectJSON(path string, m *model.CanonicalModel, detailed bool) error {
	report := inspectReport{
		FilePath:     m.Path,
		FileType:     m.Format.String(),
		FileSize:     m.FileSize,
		HeaderSize:   m.HeaderSize,
		Version:      m.Version,
		NumTensors:   m.NumTensors(),
		DataSize:     m.DataSize(),
		UniqueShapes: m.UniqueShapes(),
		UniqueDTypes: m.UniqueDTypes(),
		Metadata:     m.Metadata.KV,
	}
	if detailed {
		for _, t := range m.Tensors {
			report.Tensors = append(report.Tensors, reportTensor{
				Name:  t.Name,
				DType: t.DType.String(),
				Shape: t.Shape,
				Size:  t.Length,
			})
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode inspection report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func shapeString(shape []uint64) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, "x") + "]"
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
