// Package logging wraps logrus with the two knobs the driver cares
// about: Config.Verbose (debug-level output) and Config.Timings
// (per-stage duration fields).
package logging

import (
	"time"

	"github.com/sirupsen/logrus"

	"insndecode/internal/config"
)

// Logger is a thin façade over a *logrus.Logger configured from a Config.
type Logger struct {
	*logrus.Logger
	timings bool
}

// New builds a Logger whose level is debug when cfg.Verbose is set and
// info otherwise, formatted as plain text without timestamps (the CLI
// is expected to run short-lived, one-shot invocations).
func New(cfg *config.Config) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if cfg.Verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{Logger: l, timings: cfg.Timings}
}

// Stage logs the start of a pipeline stage at debug level and returns a
// function that, when called, logs its completion. If Config.Timings is
// not set the returned function is a no-op beyond the debug log.
func (l *Logger) Stage(name string) func() {
	l.Debugf("stage %s: starting", name)
	if !l.timings {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.WithField("elapsed", time.Since(start)).Infof("stage %s: done", name)
	}
}
