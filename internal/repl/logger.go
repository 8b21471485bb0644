package repl

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Logger provides formatted output for the interactive shell. Command results
// go through Output so they stay clean for piping; diagnostics carry a
// timestamp.
type Logger struct {
	verbose  bool
	useColor bool
	writer   io.Writer
}

// NewLogger creates a new shell logger writing to stdout.
func NewLogger(verbose, useColor bool) *Logger {
	return &Logger{
		verbose:  verbose,
		useColor: useColor,
		writer:   os.Stdout,
	}
}

// NewLoggerWithWriter creates a new shell logger with a custom writer.
func NewLoggerWithWriter(verbose, useColor bool, writer io.Writer) *Logger {
	return &Logger{
		verbose:  verbose,
		useColor: useColor,
		writer:   writer,
	}
}

// Output writes command results without timestamps.
func (l *Logger) Output(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, format, args...)
}

// OutputLine writes command results with a trailing newline.
func (l *Logger) OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, format+"\n", args...)
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) colorize(msg string, color text.Color) string {
	if !l.useColor {
		return msg
	}
	return color.Sprint(msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[%s] %s\n", l.timestamp(), fmt.Sprintf(format, args...))
}

// Debug logs a debug message (only in verbose mode).
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.writer, "[%s] %s\n", l.timestamp(), l.colorize(fmt.Sprintf(format, args...), text.FgHiBlack))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[%s] %s\n", l.timestamp(), l.colorize(fmt.Sprintf(format, args...), text.FgRed))
}

// Success logs a success message.
func (l *Logger) Success(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[%s] %s\n", l.timestamp(), l.colorize(fmt.Sprintf(format, args...), text.FgGreen))
}
