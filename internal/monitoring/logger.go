// Package monitoring holds the diagnostic logger shared by the pipeline
// packages. Libraries log through Logf; binaries decide where it goes.
package monitoring

import (
	"context"
	"fmt"
	"log"
	"log/slog"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf reports conditions the caller should know about but that do not fail
// the run, such as ambiguous scaling options.
var Warnf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetWarnLogger replaces the warning logger. Passing nil will set a no-op logger.
func SetWarnLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Warnf = func(string, ...interface{}) {}
		return
	}
	Warnf = f
}

// SlogPrintf adapts l to the Logf signature, emitting each formatted message
// at level.
func SlogPrintf(l *slog.Logger, level slog.Level) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		l.Log(context.Background(), level, fmt.Sprintf(format, v...))
	}
}

// UseSlog routes Logf to debug and Warnf to warn on l.
func UseSlog(l *slog.Logger) {
	SetLogger(SlogPrintf(l, slog.LevelDebug))
	SetWarnLogger(SlogPrintf(l, slog.LevelWarn))
}
