// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package file

import (
	"fmt"
)

// ⚠️ IOError reports a filesystem operation that failed for a given path.
// Op is one of stat, walk, read, decode, canonicalize, mkdir or write.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ⚠️ PatternError reports a glob pattern that does not compile
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q", e.Pattern)
}

// ⚠️ PathConsistencyError reports a relative path that no longer lies under the
// root it is joined to, e.g. after a middleware rewrote it to "../x" or "/x".
type PathConsistencyError struct {
	RelPath string
	Root    string
}

func (e *PathConsistencyError) Error() string {
	return fmt.Sprintf("relative path %q is not inside %s", e.RelPath, e.Root)
}

// ⚠️ MiddlewareError wraps the error returned by the middleware at Index
type MiddlewareError struct {
	Index int
	Err   error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("middleware %d: %v", e.Index, e.Err)
}

func (e *MiddlewareError) Unwrap() error {
	return e.Err
}
