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

package log

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/nya/pkg/file"
	"github.com/walteh/nya/pkg/writer"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	sizeWidth   = 10 // Width for the size column
	statusWidth = 10 // Width for status text
)

// 📦 RunOperation describes one pipeline run for logging
type RunOperation struct {
	Source      string // Source root
	Destination string // Destination root
	Middleware  int    // Number of registered middleware
}

// 🎯 Logger prints a human readable account of a run to a console and mirrors
// every line to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *RunOperation
	written int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or nil when none was attached
func FromContext(ctx context.Context) *Logger {
	logger, _ := ctx.Value(contextKey{}).(*Logger)
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatWrite formats a write result for display
func (l *Logger) formatWrite(res writer.Result) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Status {
	case writer.StatusNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case writer.StatusModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case writer.StatusUnchanged:
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, res.RelPath),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", sizeWidth, humanSize(res.Size))),
		fmt.Sprintf("%-*s", statusWidth, res.Status))
}

// 📝 LogWrite logs one written file
func (l *Logger) LogWrite(ctx context.Context, res writer.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.written++

	fmt.Fprintln(l.console, l.formatWrite(res))

	l.zlog.Info().
		Str("file", res.RelPath).
		Str("status", res.Status.String()).
		Int("size", res.Size).
		Msg("file written")
}

// 📝 StartRun prints the header of a run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.written = 0

	fmt.Fprintf(l.console, "%s %s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Source),
		color.New(color.Faint).Sprint("→"),
		color.New(color.FgCyan).Sprint(op.Destination),
		color.New(color.Faint).Sprintf("(%d middleware)", op.Middleware))

	l.zlog.Info().
		Str("source", op.Source).
		Str("destination", op.Destination).
		Int("middleware", op.Middleware).
		Msg("starting run")
}

// 📝 EndRun prints the summary of the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprintf("wrote %d files to %s", l.written, l.current.Destination))

	l.zlog.Info().
		Str("destination", l.current.Destination).
		Int("files", l.written).
		Msg("run complete")

	l.current = nil
	l.written = 0
}

// 📋 Report prints every file of the collection with its metadata keys. Its
// signature matches pipeline.MiddlewareFunc so it can be dropped anywhere in a
// chain to inspect the collection at that point.
func (l *Logger) Report(ctx context.Context, files *file.Files) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", len(*files)))

	for _, f := range *files {
		keys := make([]string, 0, len(f.Metadata))
		for k := range f.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(l.console, "%s%s %s %s\n",
			strings.Repeat(" ", fileIndent),
			fmt.Sprintf("%-*s", nameWidth, f.RelPath),
			color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", sizeWidth, humanSize(len(f.Content)))),
			color.New(color.FgYellow).Sprint(strings.Join(keys, ",")))
	}

	l.zlog.Debug().Int("files", len(*files)).Msg("collection report")
	return nil
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
