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

// Package file defines the in-memory file record that flows through a pipeline
// run, the ordered collection of those records, and the error kinds a run can
// report.
package file

import (
	"path"
)

// 📄 File is one file loaded into memory
type File struct {
	Name     string            // Base filename component
	Content  string            // Full file contents, decoded as UTF-8 text
	AbsPath  string            // Canonical absolute path at read time
	RelPath  string            // Slash-separated path relative to the source root
	Metadata map[string]string // Per-file side channel between middleware, never written
}

// 🏭 New creates a file with empty metadata. relPath is expected in slash form.
func New(relPath, absPath, content string) *File {
	return &File{
		Name:     path.Base(relPath),
		Content:  content,
		AbsPath:  absPath,
		RelPath:  relPath,
		Metadata: map[string]string{},
	}
}

// 🔍 Get returns a metadata value and whether it was set
func (f *File) Get(key string) (string, bool) {
	v, ok := f.Metadata[key]
	return v, ok
}

// 📝 Set stores a metadata value, allocating the map if a caller built the File by hand
func (f *File) Set(key, value string) {
	if f.Metadata == nil {
		f.Metadata = map[string]string{}
	}
	f.Metadata[key] = value
}

// 🔀 Rename moves the file to a new slash-separated relative path and keeps Name in sync
func (f *File) Rename(relPath string) {
	f.RelPath = relPath
	f.Name = path.Base(relPath)
}

// 📚 Files is the ordered collection handed from the reader, through every
// middleware, to the writer. Order is traversal order unless a middleware
// reorders it.
type Files []*File

// 🧹 Retain keeps only the files for which keep returns true, preserving order
func (fs *Files) Retain(keep func(*File) bool) {
	kept := (*fs)[:0]
	for _, f := range *fs {
		if keep(f) {
			kept = append(kept, f)
		}
	}
	// drop references held past the new length
	for i := len(kept); i < len(*fs); i++ {
		(*fs)[i] = nil
	}
	*fs = kept
}

// ➕ Add appends files to the collection
func (fs *Files) Add(files ...*File) {
	*fs = append(*fs, files...)
}

// 🎯 Find returns the first file with the given relative path, or nil
func (fs Files) Find(relPath string) *File {
	for _, f := range fs {
		if f.RelPath == relPath {
			return f
		}
	}
	return nil
}

// 📋 Paths returns the relative path of every file, in collection order
func (fs Files) Paths() []string {
	paths := make([]string, 0, len(fs))
	for _, f := range fs {
		paths = append(paths, f.RelPath)
	}
	return paths
}
