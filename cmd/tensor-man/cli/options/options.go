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

// Package options defines the command-line flags for the tensor-man CLI.
package options

import "github.com/spf13/cobra"

// Interface is implemented by every option set that contributes flags to
// a command.
type Interface interface {
	// AddFlags registers the option set's flags on cmd.
	AddFlags(cmd *cobra.Command)
}
