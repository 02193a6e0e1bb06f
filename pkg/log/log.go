// Copyright 2025 the deckpatch authors
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
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	partIndent = 4  // spaces to indent part entries
	nameWidth  = 35 // base width for part names
	kindWidth  = 10 // width for part kind
)

// 🎯 PartOperation represents one rewritten document part for logging.
type PartOperation struct {
	Part         string // interior part name, e.g. ppt/slides/slide1.xml
	Kind         string // part kind (slide/chart/workbook)
	Replacements int    // number of replacements made
	Skipped      bool   // whether the part was skipped
}

// 📦 DocOperation represents one document being processed.
type DocOperation struct {
	Path string // document path on disk
	Mode string // replace / sync
}

// 🎯 Logger handles structured logging with console output.
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentDoc *DocOperation
	parts      []PartOperation
}

// 🏭 New creates a new logger.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values.
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or nil when absent.
func FromContext(ctx context.Context) *Logger {
	logger, _ := ctx.Value(contextKey{}).(*Logger)
	return logger
}

// 🎯 NewContext adds the logger to context.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatPartOperation formats a part operation for display.
func (l *Logger) formatPartOperation(op PartOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.Skipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.Replacements > 0:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "slide":
		kindColor = color.FgCyan
	case "chart":
		kindColor = color.FgMagenta
	case "workbook":
		kindColor = color.FgGreen
	default:
		kindColor = color.FgBlue
	}

	return fmt.Sprintf("%s%s %s %s %d",
		fmt.Sprintf("%*s", partIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Part),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		op.Replacements)
}

// 📝 LogPartOperation logs a part operation.
func (l *Logger) LogPartOperation(ctx context.Context, op PartOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.parts = append(l.parts, op)
	fmt.Fprintln(l.console, l.formatPartOperation(op))

	l.zlog.Info().
		Str("part", op.Part).
		Str("kind", op.Kind).
		Int("replacements", op.Replacements).
		Bool("skipped", op.Skipped).
		Msg("part operation")
}

// 📝 StartDocOperation starts a new document operation.
func (l *Logger) StartDocOperation(ctx context.Context, op DocOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentDoc = &op
	l.parts = nil

	fmt.Fprintf(l.console, "[%s %s]\n",
		op.Mode,
		color.New(color.FgCyan).Sprint(op.Path))

	l.zlog.Info().
		Str("document", op.Path).
		Str("mode", op.Mode).
		Msg("starting document operation")
}

// 📝 EndDocOperation ends the current document operation.
func (l *Logger) EndDocOperation(ctx context.Context, totalReplacements int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentDoc == nil {
		return
	}

	l.zlog.Info().
		Str("document", l.currentDoc.Path).
		Int("parts", len(l.parts)).
		Int("replacements", totalReplacements).
		Msg("document operation complete")

	l.currentDoc = nil
	l.parts = nil
}

// 📝 Header logs a header.
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("deckpatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message.
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message.
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message.
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warningf logs a formatted warning message.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message.
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
