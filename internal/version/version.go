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

// Package version holds the build version stamped into binaries and
// signature manifests.
package version

// Version is the semantic version of this build. Overridden at link time
// via -ldflags "-X .../internal/version.Version=...".
var Version = "0.0.0-dev"

// Producer returns the creator string recorded in signature manifests.
func Producer() string {
	return "tensor-man v" + Version
}
