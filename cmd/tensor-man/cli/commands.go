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

// Package cli assembles the tensor-man command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dreadnode/tensor-man/cmd/tensor-man/cli/options"
)

var ro = &options.RootOptions{}

// New builds the root command with all subcommands attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "tensor-man",
		Short:             "Inspect, sign and verify ML model artifacts.",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	ro.AddFlags(cmd)

	cmd.AddCommand(Inspect())
	cmd.AddCommand(Sign())
	cmd.AddCommand(Verify())
	cmd.AddCommand(CreateKey())
	cmd.AddCommand(Version())
	return cmd
}
