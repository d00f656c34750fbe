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

package pipeline

import (
	"context"

	"github.com/walteh/nya/pkg/file"
)

// 🧩 Middleware is one step of a run. It receives exclusive mutable access to
// the whole collection and may change content or metadata, add, remove or
// reorder files. A returned error aborts the run.
type Middleware interface {
	Process(ctx context.Context, files *file.Files) error
}

// 🔧 MiddlewareFunc adapts a function to the Middleware interface
type MiddlewareFunc func(ctx context.Context, files *file.Files) error

// Process calls fn(ctx, files)
func (fn MiddlewareFunc) Process(ctx context.Context, files *file.Files) error {
	return fn(ctx, files)
}

// 🪄 Transform adapts a function that cannot fail. Such a function can only
// abort a run by panicking.
func Transform(fn func(files *file.Files)) Middleware {
	return MiddlewareFunc(func(_ context.Context, files *file.Files) error {
		fn(files)
		return nil
	})
}
