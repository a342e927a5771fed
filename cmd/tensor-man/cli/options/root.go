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
	"time"

	"github.com/spf13/cobra"

	"github.com/dreadnode/tensor-man/pkg/logging"
)

// DefaultTimeout bounds command execution.
const DefaultTimeout = 10 * time.Minute

// RootOptions holds the flags shared by every subcommand.
type RootOptions struct {
	// LogLevel is the minimum log level (debug, info, warn, error, silent).
	LogLevel string
	// LogFormat selects the log output format (text, json).
	LogFormat string
	// Timeout bounds the whole command run.
	Timeout time.Duration
	// Workers bounds hashing concurrency. Zero selects the CPU count.
	Workers int
}

var _ Interface = (*RootOptions)(nil)

// AddFlags registers the global flags on the root command.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"minimum log level (debug, info, warn, error, silent)")
	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"log output format (text, json)")
	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for command execution")
	cmd.PersistentFlags().IntVarP(&o.Workers, "workers", "w", 0,
		"number of concurrent hashing workers (0 selects the CPU count)")
}

// NewLogger builds the logger configured by the global flags.
func (o *RootOptions) NewLogger() logging.Logger {
	var formatter logging.Formatter
	if logging.ParseLevel(o.LogLevel) == logging.LevelDebug || o.LogFormat == "json" {
		// Debug runs get level prefixes so interleaved output stays readable.
		formatter = &logging.TextFormatter{ShowLevel: true}
	}
	if o.LogFormat == "json" {
		formatter = &logging.JSONFormatter{}
	}
	return logging.NewLogger(logging.Options{
		Level:     logging.ParseLevel(o.LogLevel),
		Formatter: formatter,
	})
}
