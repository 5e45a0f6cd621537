// Copyright 2025 smol-dev
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
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // base width for the file path
)

// 🎯 FileOutcome is one per-file result line shown to the user.
type FileOutcome struct {
	Path     string // repository-relative path
	Applied  bool   // file was committed
	Skipped  bool   // file was skipped (anchor/approval/guard)
	Failed   bool   // file hit an I/O failure
	Restored bool   // file was restored by undo
	Reason   string // human-readable reason for skip/failure
	Hunks    int    // hunk count of the applied diff
}

// 🎯 Logger pairs structured zerolog output with human console lines.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing console lines to console.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// NewContext adds the logger to context.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext gets the logger from context, or nil when absent.
func FromContext(ctx context.Context) *Logger {
	l, _ := ctx.Value(contextKey{}).(*Logger)
	return l
}

// 📝 formatFileOutcome formats one outcome line for display.
func (l *Logger) formatFileOutcome(o FileOutcome) string {
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case o.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
		status = "failed"
	case o.Restored:
		symbol = '⟳'
		symbolColor = color.FgBlue
		status = "restored"
	case o.Applied:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = "applied"
	default:
		symbol = '-'
		symbolColor = color.FgYellow
		status = "skipped"
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, o.Path),
		status)
	if o.Reason != "" {
		line += " " + color.New(color.Faint).Sprint("("+o.Reason+")")
	}
	return line
}

// 📝 LogFileOutcome logs one per-file result.
func (l *Logger) LogFileOutcome(ctx context.Context, o FileOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOutcome(o))

	l.zlog.Info().
		Str("file", o.Path).
		Bool("applied", o.Applied).
		Bool("skipped", o.Skipped).
		Bool("failed", o.Failed).
		Bool("restored", o.Restored).
		Str("reason", o.Reason).
		Int("hunks", o.Hunks).
		Msg("file outcome")
}

// 📝 Header logs a batch header.
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("smoledit")
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

// 📝 Newline prints a blank console line.
func (l *Logger) Newline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}
