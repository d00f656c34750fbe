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

// Package ignore provides middleware that drops files whose relative path
// matches any of a set of glob patterns.
//
// Patterns follow github.com/bmatcuk/doublestar/v4 semantics and are matched
// against the slash-separated RelPath:
//
//	*         any sequence of characters except "/"
//	**        zero or more path segments
//	?         one character except "/"
//	[a-z]     character class, [^a-z] negated
//	{a,b}     alternation
//
// So "*.txt" drops top-level text files only, while "**/*.txt" drops them at
// any depth.
package ignore

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// 🚫 Filter removes files matching any of its patterns
type Filter struct {
	patterns []string
}

var _ pipeline.Middleware = (*Filter)(nil)

// 🏭 New validates every pattern up front and returns the filter. An invalid
// pattern fails here, before any file is looked at.
func New(patterns ...string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.WithStack(&file.PatternError{Pattern: p})
		}
	}
	return &Filter{
		patterns: append([]string(nil), patterns...),
	}, nil
}

// 🏭 Must is like New but panics on an invalid pattern
func Must(patterns ...string) *Filter {
	f, err := New(patterns...)
	if err != nil {
		panic(err)
	}
	return f
}

// 📋 Patterns returns a copy of the filter's patterns
func (f *Filter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

// 🔍 Match reports whether relPath matches any pattern
func (f *Filter) Match(relPath string) bool {
	for _, p := range f.patterns {
		// patterns were validated in New, so the error is always nil
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}

// 🧹 Process drops every matching file from the collection
func (f *Filter) Process(ctx context.Context, files *file.Files) error {
	logger := zerolog.Ctx(ctx)

	files.Retain(func(fl *file.File) bool {
		if f.Match(fl.RelPath) {
			logger.Debug().Str("file", fl.RelPath).Msg("file ignored by pattern")
			return false
		}
		return true
	})

	return nil
}
