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

// Package utils holds small validation helpers shared by the command
// layer.
package utils

import (
	"fmt"
	"os"
)

// PathType constrains what a validated path must point at.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
	// PathTypeAny accepts either.
	PathTypeAny
)

// ValidatePath checks that path is non-empty, exists, and matches the
// expected type. fieldName names the flag or argument in error messages.
func ValidatePath(fieldName, path string, pathType PathType) error {
	if path == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q does not exist", fieldName, path)
		}
		return fmt.Errorf("checking %s %q: %w", fieldName, path, err)
	}

	switch pathType {
	case PathTypeFile:
		if info.IsDir() {
			return fmt.Errorf("%s %q is a directory, expected a file", fieldName, path)
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return fmt.Errorf("%s %q is a file, expected a directory", fieldName, path)
		}
	}
	return nil
}

// ValidateFileExists checks that path is an existing regular file.
func ValidateFileExists(fieldName, path string) error {
	return ValidatePath(fieldName, path, PathTypeFile)
}

// ValidatePathExists checks that path exists, whatever its type.
func ValidatePathExists(fieldName, path string) error {
	return ValidatePath(fieldName, path, PathTypeAny)
}

// ValidateOptionalFile checks path like ValidateFileExists when it is
// non-empty, and accepts an empty path.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}
