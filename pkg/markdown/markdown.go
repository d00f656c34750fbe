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

// Package markdown renders Markdown files to HTML fragments.
package markdown

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/pipeline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gitlab.com/tozd/go/errors"
)

// SourceKey is the metadata key that records the path a rendered file had before renaming
const SourceKey = "markdown.source"

var defaultExtensions = []string{".md", ".markdown"}

// Renderer is middleware converting Markdown files to HTML and renaming them
// from .md to .html
type Renderer struct {
	md         goldmark.Markdown
	extensions []string
	gfm        bool
	unsafe     bool
}

var _ pipeline.Middleware = (*Renderer)(nil)

// Option configures a Renderer
type Option func(*Renderer)

// WithoutGFM disables GitHub Flavored Markdown (tables, strikethrough, task lists, autolinks)
func WithoutGFM() Option {
	return func(r *Renderer) { r.gfm = false }
}

// WithUnsafeHTML passes raw HTML in the source through to the output
func WithUnsafeHTML() Option {
	return func(r *Renderer) { r.unsafe = true }
}

// WithExtensions overrides which file extensions are treated as Markdown
func WithExtensions(exts ...string) Option {
	return func(r *Renderer) { r.extensions = exts }
}

// New creates the Markdown middleware
func New(opts ...Option) *Renderer {
	r := &Renderer{
		extensions: defaultExtensions,
		gfm:        true,
	}
	for _, opt := range opts {
		opt(r)
	}

	var gopts []goldmark.Option
	if r.gfm {
		gopts = append(gopts, goldmark.WithExtensions(extension.GFM))
	}
	gopts = append(gopts, goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	if r.unsafe {
		gopts = append(gopts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	r.md = goldmark.New(gopts...)

	return r
}

// Render converts one Markdown document to HTML
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Process renders every Markdown file and renames it to .html
func (r *Renderer) Process(ctx context.Context, files *file.Files) error {
	logger := zerolog.Ctx(ctx)

	for _, f := range *files {
		ext := path.Ext(f.RelPath)
		if !r.matches(ext) {
			continue
		}

		out, err := r.Render(f.Content)
		if err != nil {
			return errors.Errorf("%s: %w", f.RelPath, err)
		}

		f.Set(SourceKey, f.RelPath)
		f.Content = out
		f.Rename(strings.TrimSuffix(f.RelPath, ext) + ".html")

		logger.Debug().Str("file", f.RelPath).Msg("rendered markdown")
	}

	return nil
}

func (r *Renderer) matches(ext string) bool {
	for _, e := range r.extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
