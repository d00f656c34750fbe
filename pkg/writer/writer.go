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

// Package writer persists a file.Files collection under a destination root.
//
// The writer is strictly additive: it creates and overwrites the files that
// correspond to entries in the collection and never lists, inspects or removes
// anything else in the destination tree. Files that disappeared from the
// source between two runs stay in the destination.
//
// Each file is replaced atomically through a temp file in the same directory.
// New files get mode 0644 (minus the umask), an existing file keeps its mode,
// and a symlink already in the destination is written through to its target.
package writer

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2/maybe"
	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"gitlab.com/tozd/go/errors"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// 💾 Writer writes files under a destination root
type Writer struct {
	root string
}

// 🏭 New creates a writer rooted at dir
func New(dir string) *Writer {
	return &Writer{
		root: filepath.Clean(dir),
	}
}

// 📁 Root returns the destination root
func (w *Writer) Root() string {
	return w.root
}

// 📤 WriteDir writes every file of the collection to root/RelPath. All relative
// paths are checked before anything is written. The first write failure stops
// the loop; files already written stay on disk.
func (w *Writer) WriteDir(ctx context.Context, files file.Files) ([]Result, error) {
	logger := zerolog.Ctx(ctx)

	for _, f := range files {
		if _, err := w.destPath(f.RelPath); err != nil {
			return nil, err
		}
	}

	logger.Debug().Str("root", w.root).Int("files", len(files)).Msg("writing destination directory")

	results := make([]Result, 0, len(files))
	for _, f := range files {
		res, err := w.WriteFile(ctx, f)
		if err != nil {
			return results, errors.Errorf("writing %s: %w", f.RelPath, err)
		}
		results = append(results, res)
	}

	return results, nil
}

// 📝 WriteFile writes a single file's content to root/RelPath, creating parent
// directories as needed
func (w *Writer) WriteFile(ctx context.Context, f *file.File) (Result, error) {
	dest, err := w.destPath(f.RelPath)
	if err != nil {
		return Result{}, err
	}

	content := []byte(f.Content)

	status := statusOf(dest, content)

	if err := os.MkdirAll(filepath.Dir(dest), dirMode); err != nil {
		return Result{}, errors.WithStack(&file.IOError{Op: "mkdir", Path: filepath.Dir(dest), Err: err})
	}

	if err := writeFileAtomic(dest, content); err != nil {
		return Result{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", f.RelPath).
		Str("status", status.String()).
		Int("size", len(content)).
		Msg("wrote file")

	return Result{
		RelPath: f.RelPath,
		Path:    dest,
		Status:  status,
		Size:    len(content),
	}, nil
}

// 🔒 destPath joins a slash-separated relative path onto the root, refusing
// anything that would land outside of it
func (w *Writer) destPath(rel string) (string, error) {
	native := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(native) {
		return "", errors.WithStack(&file.PathConsistencyError{RelPath: rel, Root: w.root})
	}
	return filepath.Join(w.root, native), nil
}

// 🔍 statusOf compares content with whatever currently sits at path
func statusOf(path string, content []byte) FileStatus {
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return StatusNew
	case err != nil:
		// a directory or unreadable file sits there; the write reports the real failure
		return StatusModified
	case bytes.Equal(existing, content):
		return StatusUnchanged
	default:
		return StatusModified
	}
}

// ⚛️ writeFileAtomic writes content to a temp file next to path and renames it
// over path. An existing symlink at path is written through to its target.
func writeFileAtomic(path string, content []byte) error {
	target, err := resolveLink(path)
	if err != nil {
		return errors.WithStack(&file.IOError{Op: "write", Path: path, Err: err})
	}

	if err := maybe.WriteFile(target, content, fileMode); err != nil {
		return errors.WithStack(&file.IOError{Op: "write", Path: path, Err: err})
	}

	return nil
}

// resolveLink returns the file a symlink at path points to, or path itself.
// A dangling link resolves to itself and gets replaced.
func resolveLink(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return path, nil
	}

	target, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, nil
	}
	if err != nil {
		return "", err
	}
	return target, nil
}
