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

// Package text provides literal string replacement as pipeline middleware.
package text

import (
	"context"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// MetadataKey is the metadata key holding the number of replacements made in a file
const MetadataKey = "replacements"

// ReplacementRule defines a single text replacement operation
type ReplacementRule struct {
	// FromText is the text to replace
	FromText string

	// ToText is the replacement text
	ToText string

	// FileFilterGlob limits the rule to files whose RelPath matches it.
	// Empty applies the rule to every file.
	FileFilterGlob string
}

// ReplacementResult contains the results of applying rules to some content
type ReplacementResult struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// Content is the content after replacements
	Content string
}

// ReplaceText applies every rule to content in order, ignoring FileFilterGlob
func ReplaceText(content string, rules []ReplacementRule) ReplacementResult {
	result := ReplacementResult{Content: content}

	for _, rule := range rules {
		if rule.FromText == "" {
			continue
		}

		n := strings.Count(result.Content, rule.FromText)
		if n == 0 {
			continue
		}

		result.Content = strings.ReplaceAll(result.Content, rule.FromText, rule.ToText)
		result.ReplacementCount += n
		result.WasModified = true
	}

	return result
}

// ValidateRules checks that all rules are usable
func ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: FromText is required", i)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: %w", i, &file.PatternError{Pattern: rule.FileFilterGlob})
		}
	}
	return nil
}

// Replacer is middleware applying replacement rules to every file they match
type Replacer struct {
	rules []ReplacementRule
}

var _ pipeline.Middleware = (*Replacer)(nil)

// NewReplacer validates rules and returns the middleware
func NewReplacer(rules ...ReplacementRule) (*Replacer, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Replacer{rules: append([]ReplacementRule(nil), rules...)}, nil
}

// Process rewrites file contents and records the replacement count in metadata
func (r *Replacer) Process(ctx context.Context, files *file.Files) error {
	logger := zerolog.Ctx(ctx)

	for _, f := range *files {
		res := ReplaceText(f.Content, r.rulesFor(f.RelPath))
		if !res.WasModified {
			continue
		}

		f.Content = res.Content
		f.Set(MetadataKey, strconv.Itoa(res.ReplacementCount))

		logger.Debug().
			Str("file", f.RelPath).
			Int("replacements", res.ReplacementCount).
			Msg("replaced text")
	}

	return nil
}

func (r *Replacer) rulesFor(relPath string) []ReplacementRule {
	rules := make([]ReplacementRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.FileFilterGlob != "" {
			if ok, _ := doublestar.Match(rule.FileFilterGlob, relPath); !ok {
				continue
			}
		}
		rules = append(rules, rule)
	}
	return rules
}
