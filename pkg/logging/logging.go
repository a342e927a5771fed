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

// Package logging provides the leveled, structured logging interface used
// throughout tensor-man. The Logger interface can be backed by the
// built-in DefaultLogger or adapted to any other logging backend.
package logging

import "strings"

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent disables all output.
	LevelSilent
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLevel maps a string to a Level. Unrecognized input selects
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Logger is the leveled logging interface. Implementations must be safe
// for concurrent use.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})

	// WithField returns a Logger that attaches the key-value pair to
	// every entry it emits. The receiver is unchanged.
	WithField(key string, value interface{}) Logger
}

// Default returns an info-level text logger writing to standard error.
func Default() Logger {
	return NewLogger(Options{Level: LevelInfo})
}

// EnsureLogger returns l, or a default logger when l is nil. Packages
// that accept an optional Logger call this once instead of nil-checking
// at every log site.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}
