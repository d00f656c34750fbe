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

package pipeline_test

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/ignore"
	"github.com/walteh/nya/pkg/log"
	"github.com/walteh/nya/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// 🧪 writeTree creates files (slash-separated relative path -> content) under root
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// 🧪 readTree returns every regular file under root keyed by slash-separated relative path
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestRunIdentity(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "_site")

	tree := map[string]string{
		"index.md":             "# home\n",
		"posts/2024/first.md":  "first post",
		"assets/css/site.css":  "body { color: red; }",
		"deep/a/b/c/d/e.txt":   "deep",
		"unicode/ñ.md":         "ünïcödé ✓",
		"empty.txt":            "",
		".well-known/security": "contact",
	}
	writeTree(t, src, tree)

	files, err := pipeline.Run(ctx, nil, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)
	assert.Len(t, files, len(tree))

	assert.Equal(t, tree, readTree(t, dst), "empty middleware list should copy byte for byte")
}

func TestRunOrdering(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"a.md": "original"})

	files, err := pipeline.Run(ctx, []pipeline.Middleware{
		pipeline.Transform(func(files *file.Files) { (*files)[0].Content = "a" }),
		pipeline.Transform(func(files *file.Files) { (*files)[0].Content = "b" }),
	}, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "b", files[0].Content)
	assert.Equal(t, map[string]string{"a.md": "b"}, readTree(t, dst))
}

func TestRunIgnore(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.md":       "hello",
		"b.txt":      "world",
		"c.txt":      "again",
		"docs/d.txt": "nested",
		"docs/e.md":  "kept",
	})

	files, err := pipeline.Run(ctx, []pipeline.Middleware{ignore.Must("*.txt")}, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)

	paths := files.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"a.md", "docs/d.txt", "docs/e.md"}, paths)
	assert.Equal(t, map[string]string{
		"a.md":       "hello",
		"docs/d.txt": "nested",
		"docs/e.md":  "kept",
	}, readTree(t, dst))
}

func TestRunEndToEnd(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.md":  "hello",
		"b.txt": "world",
	})

	files, err := pipeline.Run(ctx, []pipeline.Middleware{ignore.Must("*.txt")}, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "a.md", files[0].Name)
	assert.Nil(t, files.Find("b.txt"), "ignored file should not be in the returned collection")
	assert.Equal(t, map[string]string{"a.md": "hello"}, readTree(t, dst))
}

func TestRunMetadataDoesNotLeak(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"a.md": "body", "b.md": "other"})

	const marker = "metadata-marker-value"
	var seen []string
	files, err := pipeline.Run(ctx, []pipeline.Middleware{
		pipeline.Transform(func(files *file.Files) {
			for _, f := range *files {
				f.Set("k", marker)
			}
		}),
		pipeline.Transform(func(files *file.Files) {
			for _, f := range *files {
				v, _ := f.Get("k")
				seen = append(seen, v)
			}
		}),
	}, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)

	assert.Equal(t, []string{marker, marker}, seen)
	for _, f := range files {
		assert.Equal(t, marker, f.Metadata["k"])
	}
	for rel, content := range readTree(t, dst) {
		assert.NotContains(t, content, marker, "metadata should never reach %s", rel)
	}
}

func TestRunMissingSource(t *testing.T) {
	ctx := testContext(t)
	dst := filepath.Join(t.TempDir(), "_site")
	ran := false

	files, err := pipeline.Run(ctx, []pipeline.Middleware{
		pipeline.Transform(func(files *file.Files) { ran = true }),
	}, pipeline.Options{Source: filepath.Join(t.TempDir(), "missing"), Destination: dst})
	require.Error(t, err)
	assert.Nil(t, files)
	assert.False(t, ran, "middleware should not run without a collection")

	var ioErr *file.IOError
	require.ErrorAs(t, err, &ioErr)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "destination should be left untouched")
}

func TestRunMiddlewareErrorWritesNothing(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "_site")
	writeTree(t, src, map[string]string{"a.md": "a"})

	_, err := pipeline.Run(ctx, []pipeline.Middleware{
		pipeline.MiddlewareFunc(func(ctx context.Context, files *file.Files) error {
			return errors.New("template not found")
		}),
	}, pipeline.Options{Source: src, Destination: dst})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written after a middleware error")
}

func TestRunPathConsistency(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "_site")
	writeTree(t, src, map[string]string{"a.md": "a"})

	_, err := pipeline.Run(ctx, []pipeline.Middleware{
		pipeline.Transform(func(files *file.Files) { (*files)[0].RelPath = "../outside.md" }),
	}, pipeline.Options{Source: src, Destination: dst})
	require.Error(t, err)

	var pathErr *file.PathConsistencyError
	require.ErrorAs(t, err, &pathErr)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dst), "outside.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunStaleFilesRemain(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	opts := pipeline.Options{Source: src, Destination: dst}

	writeTree(t, src, map[string]string{"x.md": "x", "y.md": "y"})
	_, err := pipeline.Run(ctx, nil, opts)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(src, "x.md")))
	files, err := pipeline.Run(ctx, nil, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"y.md"}, files.Paths())
	assert.Equal(t, map[string]string{"x.md": "x", "y.md": "y"}, readTree(t, dst), "stale output should remain")
}

func TestRunDefaults(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.md": "a", "sub/b.md": "b"})

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = pipeline.Run(ctx, nil, pipeline.Options{})
	require.NoError(t, err)

	// a second run must not read its own output back in
	files, err := pipeline.Run(ctx, nil, pipeline.Options{})
	require.NoError(t, err)

	paths := files.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{"a.md", "sub/b.md"}, paths)
	assert.Equal(t, map[string]string{"a.md": "a", "sub/b.md": "b"}, readTree(t, filepath.Join(root, pipeline.DefaultDestination)))
}

func TestRunConsole(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := testContext(t)
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"a.md": "hello"})

	buf := &bytes.Buffer{}
	_, err := pipeline.Run(ctx, nil, pipeline.Options{Source: src, Destination: dst, Console: buf})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "(0 middleware)")
	assert.Contains(t, out, "✓ a.md")
	assert.Contains(t, out, "wrote 1 files to "+dst)

	// a logger attached to the context is used when no console is given
	buf.Reset()
	ctx = log.NewContext(ctx, log.New(buf, zerolog.Nop()))
	_, err = pipeline.Run(ctx, nil, pipeline.Options{Source: src, Destination: dst})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "• a.md", "second write of identical content should be unchanged")

	buf.Reset()
	_, err = pipeline.Run(ctx, nil, pipeline.Options{Source: filepath.Join(src, "missing"), Destination: dst})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lastLine(buf.String())), "❌ run failed:"))
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
