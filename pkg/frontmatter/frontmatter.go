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

// Package frontmatter moves a leading YAML block out of file content and into
// file metadata.
//
//	---
//	title: Hello
//	tags: [a, b]
//	---
//	body
//
// becomes Content "body\n" with Metadata {"title": "Hello", "tags": "[a, b]"}.
// Scalars keep their literal YAML text, null becomes "", and sequences or
// mappings are re-encoded in YAML flow style.
package frontmatter

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter is returned when a file opens a front matter block but never closes it
var ErrMissingClosingDelimiter = errors.Base("front matter: missing closing delimiter")

// Split separates a leading front matter block from the body. When content
// does not start with a delimiter line, had is false and body is content.
func Split(content string) (frontmatter, body string, had bool, err error) {
	var nl string
	switch {
	case strings.HasPrefix(content, delimiter+"\r\n"):
		nl = "\r\n"
	case strings.HasPrefix(content, delimiter+"\n"):
		nl = "\n"
	default:
		return "", content, false, nil
	}

	rest := content[len(delimiter)+len(nl):]

	// empty block
	if rest == delimiter || strings.HasPrefix(rest, delimiter+nl) {
		return "", strings.TrimPrefix(rest[len(delimiter):], nl), true, nil
	}

	closing := nl + delimiter + nl
	if idx := strings.Index(rest, closing); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
	}
	if strings.HasSuffix(rest, nl+delimiter) {
		return rest[:len(rest)-len(delimiter)], "", true, nil
	}

	return "", "", false, errors.WithStack(ErrMissingClosingDelimiter)
}

// Parse decodes a YAML mapping into string values
func Parse(frontmatter string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(frontmatter) == "" {
		return out, nil
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(frontmatter), &doc); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	for key, node := range doc {
		value, err := stringify(&node)
		if err != nil {
			return nil, errors.Errorf("encoding %q: %w", key, err)
		}
		out[key] = value
	}

	return out, nil
}

func stringify(node *yaml.Node) (string, error) {
	node, err := plain(node, map[*yaml.Node]bool{})
	if err != nil {
		return "", err
	}

	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			return "", nil
		}
		return node.Value, nil
	}

	node.Style = yaml.FlowStyle
	data, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// plain returns a copy of node with aliases replaced by what they point to and
// anchors dropped, so the encoded text carries only values
func plain(node *yaml.Node, open map[*yaml.Node]bool) (*yaml.Node, error) {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if open[node] {
		return nil, errors.Errorf("anchor %q refers to itself", node.Anchor)
	}

	out := *node
	out.Anchor = ""
	if len(node.Content) > 0 {
		open[node] = true
		out.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			c, err := plain(child, open)
			if err != nil {
				return nil, err
			}
			out.Content[i] = c
		}
		delete(open, node)
	}
	return &out, nil
}

// Extractor is middleware that strips front matter from every file that has
// it and stores the values in the file's metadata
type Extractor struct {
	prefix string
}

var _ pipeline.Middleware = (*Extractor)(nil)

// Option configures an Extractor
type Option func(*Extractor)

// WithPrefix namespaces every metadata key, e.g. "page." gives "page.title"
func WithPrefix(prefix string) Option {
	return func(e *Extractor) {
		e.prefix = prefix
	}
}

// New creates the front matter middleware
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process extracts front matter from each file. A malformed block fails the run.
func (e *Extractor) Process(ctx context.Context, files *file.Files) error {
	logger := zerolog.Ctx(ctx)

	for _, f := range *files {
		fm, body, had, err := Split(f.Content)
		if err != nil {
			return errors.Errorf("%s: %w", f.RelPath, err)
		}
		if !had {
			continue
		}

		values, err := Parse(fm)
		if err != nil {
			return errors.Errorf("%s: %w", f.RelPath, err)
		}

		for k, v := range values {
			f.Set(e.prefix+k, v)
		}
		f.Content = body

		logger.Debug().Str("file", f.RelPath).Int("keys", len(values)).Msg("extracted front matter")
	}

	return nil
}
