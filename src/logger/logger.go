// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/gc"
)

// Output formats accepted by [New].
const (
	FormatCLI  = "cli"
	FormatJSON = "json"
)

// ErrUnknownFormat indicates a log format other than [FormatCLI] or [FormatJSON].
var ErrUnknownFormat = errors.New("logger: unknown log format")

// Logger defines the interface for logging operations.
// It provides methods for formatted output and output redirection.
//
// The interface lets the importer switch between human-readable output and
// structured JSON lines without changing call sites.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// New returns the logger for format writing to w.
//
// Parameters:
//   - format: FormatCLI or FormatJSON (empty means FormatCLI)
//   - w: Destination (nil means standard error for JSON, standard output for CLI)
//
// Returns:
//   - Logger: Configured logger
//   - error: ErrUnknownFormat for any other format
func New(format string, w io.Writer) (Logger, error) {
	switch format {
	case "", FormatCLI:
		l := NewCLILogger()
		if w != nil {
			l.SetOutput(w)
		}
		return l, nil
	case FormatJSON:
		if w == nil {
			w = os.Stderr
		}
		return NewJSONLogger(w, false), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line, with
// the fields level, time and message.
//
// Lines are encoded into pooled buffers from [gc.Default] and written with a
// single call, so concurrent lines never interleave.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
	now    func() time.Time
}

// jsonEntry is the shape of one log line.
type jsonEntry struct {
	Level   string `json:"level"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

// NewJSONLogger creates a new JSON logger.
// A silent logger drops every message, which keeps machine-readable command
// output on standard output clean.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		silent: silent,
		now:    time.Now,
	}
}

// Printf formats and logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (j *JSONLogger) Printf(format string, v ...any) {
	if j.silent {
		return
	}
	j.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message in JSON format.
// Output is suppressed if silent mode is enabled.
func (j *JSONLogger) Println(v ...any) {
	if j.silent {
		return
	}
	j.write(fmt.Sprint(v...))
}

func (j *JSONLogger) write(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	entry := jsonEntry{
		Level:   "info",
		Time:    j.now().UTC().Format(time.RFC3339Nano),
		Message: msg,
	}
	// Encoder appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry); err != nil {
		return
	}

	j.mu.Lock()
	buf.WriteTo(j.writer)
	j.mu.Unlock()
}

// SetOutput sets the output destination for the JSON logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}
