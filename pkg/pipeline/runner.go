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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Runner applies middleware to a collection, in registration order
type Runner struct {
	middleware []Middleware
}

// 🏗️ NewRunner creates a runner with the given middleware chain
func NewRunner(middleware ...Middleware) *Runner {
	return &Runner{
		middleware: append([]Middleware(nil), middleware...),
	}
}

// ➕ Use appends middleware to the end of the chain
func (r *Runner) Use(middleware ...Middleware) {
	r.middleware = append(r.middleware, middleware...)
}

// 📏 Len returns the number of registered middleware
func (r *Runner) Len() int {
	return len(r.middleware)
}

// 🏃 Run executes each middleware synchronously, each one completing before
// the next starts. The first error stops the chain.
func (r *Runner) Run(ctx context.Context, files *file.Files) error {
	logger := zerolog.Ctx(ctx)

	for i, mw := range r.middleware {
		if mw == nil {
			return errors.WithStack(&file.MiddlewareError{Index: i, Err: errors.New("nil middleware")})
		}

		logger.Debug().
			Int("index", i).
			Str("middleware", fmt.Sprintf("%T", mw)).
			Int("files", len(*files)).
			Msg("running middleware")

		if err := mw.Process(ctx, files); err != nil {
			return errors.WithStack(&file.MiddlewareError{Index: i, Err: err})
		}
	}

	return nil
}
