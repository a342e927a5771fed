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

package artifact

import "fmt"

// MissingReferenceError reports a companion file that an artifact's header
// or index names but that does not exist on disk. Resolution fails rather
// than producing a file set that silently omits part of the model.
type MissingReferenceError struct {
	// Artifact is the path whose header or index declared the reference.
	Artifact string
	// Reference is the declared path that could not be found, relative to
	// the artifact's directory.
	Reference string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("artifact %q references %q which does not exist", e.Artifact, e.Reference)
}

// UnresolvableArtifactError reports a path that cannot be turned into a
// file set at all: it does not exist, is neither a regular file nor a
// directory, or contains entries that are neither.
type UnresolvableArtifactError struct {
	Path   string
	Reason string
}

func (e *UnresolvableArtifactError) Error() string {
	return fmt.Sprintf("cannot resolve artifact %q: %s", e.Path, e.Reason)
}
