package etalon

import (
	"log"

	jww "github.com/spf13/jwalterweatherman"
	"go.uber.org/zap"
)

// Level is the severity hint passed along with a report line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Reporter receives rendered report lines. Failures to emit are the
// Reporter's own business and never reach the caller of PrintTimings.
type Reporter interface {
	Report(level Level, line string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(level Level, line string)

func (f ReporterFunc) Report(level Level, line string) { f(level, line) }

// NopReporter discards every line.
type NopReporter struct{}

func (NopReporter) Report(Level, string) {}

// LogReporter writes lines to a standard library logger.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter returns a LogReporter writing to l.
func NewLogReporter(l *log.Logger) *LogReporter {
	return &LogReporter{Logger: l}
}

func (r *LogReporter) Report(level Level, line string) {
	r.Logger.Printf("[%s] %s", level, line)
}

// NotepadReporter writes lines to the matching level of a jwalterweatherman
// Notepad, so its thresholds decide what is shown.
type NotepadReporter struct {
	Notepad *jww.Notepad
}

// NewNotepadReporter returns a NotepadReporter writing to n.
func NewNotepadReporter(n *jww.Notepad) *NotepadReporter {
	return &NotepadReporter{Notepad: n}
}

func (r *NotepadReporter) Report(level Level, line string) {
	switch level {
	case LevelInfo:
		r.Notepad.INFO.Println(line)
	default:
		r.Notepad.DEBUG.Println(line)
	}
}

// ZapReporter writes lines to a zap logger.
type ZapReporter struct {
	Logger *zap.Logger
}

// NewZapReporter returns a ZapReporter writing to l.
func NewZapReporter(l *zap.Logger) *ZapReporter {
	return &ZapReporter{Logger: l}
}

func (r *ZapReporter) Report(level Level, line string) {
	switch level {
	case LevelInfo:
		r.Logger.Info(line)
	default:
		r.Logger.Debug(line)
	}
}
