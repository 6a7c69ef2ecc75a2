package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes leveled, component-scoped lines. Debug and Info are only
// emitted while the verbose check reports true.
type Logger struct {
	component string
	verbose   func() bool
	out       *sink
}

type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Field is a key=value pair appended to a log line.
type Field struct {
	Key   string
	Value any
}

// New returns a logger writing to stderr.
func New(component string, verbose func() bool) *Logger {
	return &Logger{
		component: component,
		verbose:   verbose,
		out:       &sink{w: os.Stderr},
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{out: &sink{w: io.Discard}}
}

// WithComponent shares the writer and verbose check under a new component name.
func (l *Logger) WithComponent(component string) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{component: component, verbose: l.verbose, out: l.out}
}

// SetOutput redirects every logger derived from the same root.
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil || w == nil {
		return
	}
	l.out.mu.Lock()
	l.out.w = w
	l.out.mu.Unlock()
}

func (l *Logger) isVerbose() bool {
	return l != nil && l.verbose != nil && l.verbose()
}

func (l *Logger) Debug(msg string, args ...any) {
	if l.isVerbose() {
		l.write("DEBUG", msg, nil, args...)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.isVerbose() {
		l.write("INFO", msg, nil, args...)
	}
}

// Warn is always emitted.
func (l *Logger) Warn(msg string, args ...any) {
	l.write("WARN", msg, nil, args...)
}

// Error is always emitted.
func (l *Logger) Error(msg string, args ...any) {
	l.write("ERROR", msg, nil, args...)
}

func (l *Logger) DebugWithFields(msg string, fields []Field, args ...any) {
	if l.isVerbose() {
		l.write("DEBUG", msg, fields, args...)
	}
}

func (l *Logger) InfoWithFields(msg string, fields []Field, args ...any) {
	if l.isVerbose() {
		l.write("INFO", msg, fields, args...)
	}
}

func (l *Logger) WarnWithFields(msg string, fields []Field, args ...any) {
	l.write("WARN", msg, fields, args...)
}

func (l *Logger) write(level, msg string, fields []Field, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	component := l.component
	if component == "" {
		component = "main"
	}
	line := fmt.Sprintf("[%s] %s [%s] %s", time.Now().Format("15:04:05.000"), level, component, fmt.Sprintf(msg, args...))
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		line += " [" + strings.Join(parts, " ") + "]"
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	// Nowhere to report a failed log write.
	_, _ = fmt.Fprintln(l.out.w, line)
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
