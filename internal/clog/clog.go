// Package clog is the pipeline's own operational logging: worker
// start/stop, population pass timings, cache hit/miss. It follows the
// teacher's plain-stdlib-plus-color-gating style
// (funvibe/funxy/internal/evaluator/builtins_term.go checks NO_COLOR and
// mattn/go-isatty before emitting ANSI codes) rather than reaching for a
// structured-logging library the pack doesn't otherwise use.
package clog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Level orders severities low to high, matching the order messages are
// filtered by a Logger's minimum level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "???"
	}
}

func (l Level) color() string {
	switch l {
	case Debug:
		return "\x1b[90m"
	case Info:
		return "\x1b[36m"
	case Warn:
		return "\x1b[33m"
	case Error:
		return "\x1b[31m"
	default:
		return ""
	}
}

// Logger writes leveled lines to an io.Writer, colorizing the level tag
// when the destination is a real terminal and NO_COLOR isn't set.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	min     Level
	color   bool
	fields  map[string]any
}

// New builds a Logger writing to out at minimum level min. Color is
// auto-detected the way terminal-aware builtins commonly do it:
// disabled under NO_COLOR, and only enabled when out is *os.File and a
// real or Cygwin terminal.
func New(out io.Writer, min Level) *Logger {
	return &Logger{out: out, min: min, color: shouldColor(out)}
}

func shouldColor(out io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// With returns a child logger that prefixes every line with the given
// key/value pairs (e.g. worker id, file path).
func (l *Logger) With(kv ...any) *Logger {
	child := &Logger{out: l.out, min: l.min, color: l.color, fields: make(map[string]any, len(l.fields)+len(kv)/2)}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			child.fields[key] = kv[i+1]
		}
	}
	return child
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UTC().Format("15:04:05.000")
	tag := level.String()
	if l.color {
		fmt.Fprintf(l.out, "%s [%s%-5s\x1b[0m]", ts, level.color(), tag)
	} else {
		fmt.Fprintf(l.out, "%s [%-5s]", ts, tag)
	}
	for k, v := range l.fields {
		fmt.Fprintf(l.out, " %s=%v", k, v)
	}
	fmt.Fprintf(l.out, " "+format+"\n", args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }

// Stderr is the default logger pipelines reach for when the caller
// doesn't supply one, writing directly to os.Stderr.
func Stderr() *Logger {
	return New(os.Stderr, Info)
}
