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
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/log"
	"github.com/walteh/nya/pkg/reader"
	"github.com/walteh/nya/pkg/writer"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultSource is the source root used when Options.Source is empty
	DefaultSource = "."
	// DefaultDestination is the destination root used when Options.Destination is empty
	DefaultDestination = "_site"
)

// 🔧 Options configures a run
type Options struct {
	// Source is the directory tree to read. Defaults to ".".
	Source string
	// Destination is the directory tree to write. Defaults to "_site".
	Destination string
	// Console, when set, receives one line per written file. Without it a
	// *log.Logger attached to the context is used, if any.
	Console io.Writer
}

// resolve fills in defaults
func (o Options) resolve() Options {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Destination == "" {
		o.Destination = DefaultDestination
	}
	return o
}

// 🚀 Run reads opts.Source, threads the collection through middleware in
// order, writes the result under opts.Destination and returns the final
// collection. Any error aborts the run; nothing is written unless reading and
// every middleware succeeded.
//
// When the destination lies inside the source (as with the defaults) the
// destination subtree is not read, so output from a previous run is never
// fed back in as input.
func Run(ctx context.Context, middleware []Middleware, opts Options) (file.Files, error) {
	opts = opts.resolve()
	logger := zerolog.Ctx(ctx)

	console := log.FromContext(ctx)
	if opts.Console != nil {
		console = log.New(opts.Console, *logger)
	}

	if console != nil {
		console.StartRun(ctx, log.RunOperation{
			Source:      opts.Source,
			Destination: opts.Destination,
			Middleware:  len(middleware),
		})
	}

	files, err := run(ctx, middleware, opts, console)
	if err != nil {
		if console != nil {
			console.Errorf("run failed: %v", err)
		}
		return nil, err
	}

	if console != nil {
		console.EndRun(ctx)
	}

	return files, nil
}

func run(ctx context.Context, middleware []Middleware, opts Options, console *log.Logger) (file.Files, error) {
	files, err := reader.ReadDir(ctx, opts.Source, reader.WithSkipDir(opts.Destination))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", opts.Source, err)
	}

	if err := NewRunner(middleware...).Run(ctx, &files); err != nil {
		return nil, errors.Errorf("running middleware: %w", err)
	}

	results, err := writer.New(opts.Destination).WriteDir(ctx, files)
	if console != nil {
		for _, res := range results {
			console.LogWrite(ctx, res)
		}
	}
	if err != nil {
		return nil, errors.Errorf("writing %s: %w", opts.Destination, err)
	}

	return files, nil
}
