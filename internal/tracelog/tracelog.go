// Package tracelog is reproc's ambient logging layer: a leveled,
// colorized, prefix-per-process logger with debug/info/error levels.
package tracelog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

func colorize(attr color.Attribute, fstring string, args ...any) []string {
	msg := fstring
	if len(args) > 0 {
		msg = fmt.Sprintf(fstring, args...)
	}
	lines := strings.Split(msg, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = color.New(attr).SprintFunc()(line)
	}
	return out
}

func debugColorize(fstring string, args ...any) []string {
	return colorize(color.FgCyan, fstring, args...)
}

func infoColorize(fstring string, args ...any) []string {
	return colorize(color.FgHiBlue, fstring, args...)
}

func errorColorize(fstring string, args ...any) []string {
	return colorize(color.FgHiRed, fstring, args...)
}

func prefixColorize(fstring string) string {
	return colorize(color.FgYellow, "%s", fstring)[0]
}

// syncWriter serializes output across the several Loggers that share
// os.Stdout when more than one Process is being traced at once.
type syncWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Write(p)
}

var sharedWriter = &syncWriter{writer: os.Stdout}

// Logger emits colorized, prefixed lifecycle traces when enabled, and
// is otherwise entirely silent — Process wires one up only when
// Options.Debug is set.
type Logger struct {
	enabled bool
	logger  *log.Logger
}

// New returns a Logger prefixed with shortID (typically a Process's
// uuid, shortened). enabled gates every call below to a no-op when
// false, so callers don't need their own "if Debug" guards.
func New(shortID string, enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		logger:  log.New(sharedWriter, prefixColorize(fmt.Sprintf("[reproc %s] ", shortID)), 0),
	}
}

func (l *Logger) Debugf(fstring string, args ...any) {
	if !l.enabled {
		return
	}
	for _, line := range debugColorize(fstring, args...) {
		l.logger.Println(line)
	}
}

func (l *Logger) Infof(fstring string, args ...any) {
	if !l.enabled {
		return
	}
	for _, line := range infoColorize(fstring, args...) {
		l.logger.Println(line)
	}
}

func (l *Logger) Errorf(fstring string, args ...any) {
	if !l.enabled {
		return
	}
	for _, line := range errorColorize(fstring, args...) {
		l.logger.Println(line)
	}
}
