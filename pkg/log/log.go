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
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	langIndent   = 4  // spaces to indent language entries
	nameWidth    = 24 // width for the language name
	numberWidth  = 12 // width for line and token counts
	perLineWidth = 8  // width for tokens/line
)

// 🎯 LanguageLine is one language of a finished analysis
type LanguageLine struct {
	Language      string  // Language label
	Files         int     // Files counted
	Lines         int64   // Lines of code
	Tokens        int64   // Tokens
	TokensPerLine float64 // Tokens per line
	IsTotal       bool    // Whether this is the synthetic total
}

// 📦 Run describes one analysis for logging
type Run struct {
	Repo    string // Repository reference, empty for local scans
	Ref     string // Ref actually analysed
	Root    string // Directory being analysed
	Archive string // Archive URL, empty for local scans
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	runID   string
	mu      sync.Mutex
	current *Run
	lines   []LanguageLine
}

// 🏭 New creates a new logger writing structured logs to stderr
func New(console io.Writer, level zerolog.Level) *Logger {
	return NewWithWriter(console, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr }), level)
}

// 🏭 NewWithWriter creates a logger with an explicit structured log destination
func NewWithWriter(console io.Writer, logs io.Writer, level zerolog.Level) *Logger {
	runID := uuid.NewString()
	zlog := zerolog.New(logs).With().Timestamp().Str("run_id", runID).Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		runID:   runID,
	}
}

// RunID returns the id attached to every structured log line
func (l *Logger) RunID() string {
	return l.runID
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger and its zerolog logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	ctx = l.zlog.WithContext(ctx)
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatLanguageLine formats a language line for display
func (l *Logger) formatLanguageLine(line LanguageLine) string {
	symbol := '•'
	symbolColor := color.FgCyan
	nameAttrs := []color.Attribute{color.Reset}
	if line.IsTotal {
		symbol = '◆'
		symbolColor = color.FgMagenta
		nameAttrs = []color.Attribute{color.Bold}
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", langIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		color.New(nameAttrs...).Sprint(fmt.Sprintf("%-*s", nameWidth, line.Language)),
		fmt.Sprintf("%*s", numberWidth, humanize.Comma(line.Lines)),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%*s", numberWidth, humanize.Comma(line.Tokens))),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%*.2f", perLineWidth, line.TokensPerLine)))
}

// 📝 LogLanguage logs one language of the result
func (l *Logger) LogLanguage(ctx context.Context, line LanguageLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add to lines list
	l.lines = append(l.lines, line)

	// Format and print
	fmt.Fprintln(l.console, l.formatLanguageLine(line))

	// Log to zerolog
	l.zlog.Debug().
		Str("language", line.Language).
		Int("files", line.Files).
		Int64("lines", line.Lines).
		Int64("tokens", line.Tokens).
		Float64("tokens_per_line", line.TokensPerLine).
		Bool("is_total", line.IsTotal).
		Msg("language result")
}

// 📝 StartRun starts a new analysis
func (l *Logger) StartRun(ctx context.Context, run Run) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &run
	l.lines = nil

	// Print run header
	fmt.Fprintf(l.console, "[analysing %s]\n",
		color.New(color.FgCyan).Sprint(run.Root))

	if run.Repo != "" {
		fmt.Fprintf(l.console, "%s %s %s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(run.Repo),
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprint(run.Ref))
	}

	// Log to zerolog
	l.zlog.Info().
		Str("repo", run.Repo).
		Str("ref", run.Ref).
		Str("root", run.Root).
		Str("archive", run.Archive).
		Msg("starting analysis")
}

// 📝 EndRun ends the current analysis
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	// Log summary
	l.zlog.Info().
		Str("root", l.current.Root).
		Int("languages", len(l.lines)).
		Msg("analysis complete")

	l.current = nil
	l.lines = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("tokenalyzer")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
