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

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// Entry is one log record handed to a Formatter.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Fields    map[string]interface{}
}

// Formatter renders an Entry into output bytes.
type Formatter interface {
	Format(entry Entry) ([]byte, error)
}

// TextFormatter renders entries as single human-readable lines. Fields
// are appended as key=value pairs in key order.
type TextFormatter struct {
	// TimeFormat enables a leading timestamp when non-empty.
	TimeFormat string
	// ShowLevel enables a [LEVEL] prefix.
	ShowLevel bool
}

func (f *TextFormatter) Format(entry Entry) ([]byte, error) {
	var b strings.Builder

	if f.TimeFormat != "" {
		b.WriteString(entry.Timestamp.Format(f.TimeFormat))
		b.WriteByte(' ')
	}
	if f.ShowLevel {
		fmt.Fprintf(&b, "[%s] ", strings.ToUpper(entry.Level.String()))
	}
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// JSONFormatter renders entries as one JSON object per line.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(entry Entry) ([]byte, error) {
	record := struct {
		Timestamp string                 `json:"timestamp"`
		Level     string                 `json:"level"`
		Message   string                 `json:"message"`
		Fields    map[string]interface{} `json:"fields,omitempty"`
	}{
		Timestamp: entry.Timestamp.Format(time.RFC3339),
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Fields:    entry.Fields,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Options configures a DefaultLogger.
type Options struct {
	// Level is the minimum level emitted. The zero value is LevelDebug.
	Level Level
	// Formatter renders entries. Defaults to a bare TextFormatter.
	Formatter Formatter
	// Output receives formatted entries. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultLogger is the built-in Logger. Diagnostics go to standard error
// so command output on standard out stays machine-readable.
type DefaultLogger struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	out       io.Writer
	fields    map[string]interface{}
}

// NewLogger builds a DefaultLogger from opts, applying defaults for any
// zero field.
func NewLogger(opts Options) *DefaultLogger {
	formatter := opts.Formatter
	if formatter == nil {
		formatter = &TextFormatter{}
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return &DefaultLogger{
		level:     opts.Level,
		formatter: formatter,
		out:       out,
	}
}

// SetLevel changes the minimum emitted level.
func (l *DefaultLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// WithField returns a copy of the logger that adds the pair to every
// entry.
func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value

	return &DefaultLogger{
		level:     l.level,
		formatter: l.formatter,
		out:       l.out,
		fields:    fields,
	}
}

func (l *DefaultLogger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	data, err := l.formatter.Format(Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Fields:    l.fields,
	})
	if err != nil {
		fmt.Fprintf(l.out, "logging error: %v\n", err)
		return
	}
	_, _ = l.out.Write(data)
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}
