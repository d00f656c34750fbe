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

// Package reader loads every regular file under a source directory into a
// file.Files collection.
package reader

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Option configures ReadDir
type Option func(*options)

type options struct {
	skipDirs []string
}

// 🚫 WithSkipDir excludes the subtree rooted at dir. Directories outside the
// source root are ignored.
func WithSkipDir(dir string) Option {
	return func(o *options) {
		o.skipDirs = append(o.skipDirs, dir)
	}
}

// 📥 ReadDir reads every regular file under root, recursively. Any failure
// aborts the read and no partial collection is returned.
func ReadDir(ctx context.Context, root string, opts ...Option) (file.Files, error) {
	logger := zerolog.Ctx(ctx)

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WithStack(&file.IOError{Op: "stat", Path: root, Err: err})
	}
	if !info.IsDir() {
		return nil, errors.WithStack(&file.IOError{Op: "stat", Path: root, Err: errors.New("not a directory")})
	}

	skip, err := skipPrefixes(root, o.skipDirs)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("root", root).Msg("reading source directory")

	var files file.Files
	err = doublestar.GlobWalk(os.DirFS(root), "**", func(rel string, d fs.DirEntry) error {
		if d.IsDir() || isSkipped(rel, skip) {
			return nil
		}

		f, ok, err := readFile(root, rel)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug().Str("path", rel).Msg("skipping non-regular file")
			return nil
		}

		logger.Debug().Str("path", f.RelPath).Int("size", len(f.Content)).Msg("read file")
		files = append(files, f)
		return nil
	}, doublestar.WithFailOnIOErrors(), doublestar.WithNoFollow())
	if err != nil {
		var ioErr *file.IOError
		if errors.As(err, &ioErr) {
			return nil, err
		}
		return nil, errors.WithStack(&file.IOError{Op: "walk", Path: root, Err: err})
	}

	logger.Debug().Int("files", len(files)).Msg("finished reading source directory")
	return files, nil
}

// 📄 readFile loads one walked entry. ok is false for entries that resolve to
// something other than a regular file (symlinks to directories, sockets, devices).
// The walk does not descend into symlinked directories, so a link cycle is
// never entered.
func readFile(root, rel string) (*file.File, bool, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	// stat follows symlinks so a dangling link fails here
	info, err := os.Stat(full)
	if err != nil {
		return nil, false, errors.WithStack(&file.IOError{Op: "stat", Path: full, Err: err})
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, false, errors.WithStack(&file.IOError{Op: "read", Path: full, Err: err})
	}
	if !utf8.Valid(content) {
		return nil, false, errors.WithStack(&file.IOError{Op: "decode", Path: full, Err: errors.New("invalid UTF-8")})
	}

	abs, err := canonicalize(full)
	if err != nil {
		return nil, false, errors.WithStack(&file.IOError{Op: "canonicalize", Path: full, Err: err})
	}

	return file.New(rel, abs, string(content)), true, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// skipPrefixes converts skip directories into slash-separated prefixes relative to root
func skipPrefixes(root string, dirs []string) ([]string, error) {
	if len(dirs) == 0 {
		return nil, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WithStack(&file.IOError{Op: "canonicalize", Path: root, Err: err})
	}

	var prefixes []string
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.WithStack(&file.IOError{Op: "canonicalize", Path: dir, Err: err})
		}
		rel, err := filepath.Rel(absRoot, absDir)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		prefixes = append(prefixes, filepath.ToSlash(rel))
	}
	return prefixes, nil
}

func isSkipped(rel string, prefixes []string) bool {
	for _, p := range prefixes {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
