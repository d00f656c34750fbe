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

package nya

import (
	"context"

	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/ignore"
	"github.com/walteh/nya/pkg/pipeline"
)

type (
	// File is one text file held in memory
	File = file.File
	// Files is the ordered collection middleware operate on
	Files = file.Files
	// Middleware is one step of a run
	Middleware = pipeline.Middleware
	// MiddlewareFunc adapts a function to Middleware
	MiddlewareFunc = pipeline.MiddlewareFunc
	// Options configures a run
	Options = pipeline.Options
)

// Run reads opts.Source, applies middleware in order and writes the result to
// opts.Destination. Empty paths default to "." and "_site".
func Run(ctx context.Context, middleware []Middleware, opts Options) (Files, error) {
	return pipeline.Run(ctx, middleware, opts)
}

// Ignore returns middleware that drops every file whose relative path matches
// any of the glob patterns
func Ignore(patterns ...string) (Middleware, error) {
	f, err := ignore.New(patterns...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Transform adapts a function that cannot fail into Middleware
func Transform(fn func(files *Files)) Middleware {
	return pipeline.Transform(fn)
}
