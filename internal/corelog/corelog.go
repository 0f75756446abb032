// Package corelog backs the core's internal diagnostics with logrus and
// forwards warning+ severity to a client-supplied callback, the rest to
// an informational one. Neither callback is required; a nil sink is
// simply dropped after formatting.
package corelog

import (
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Logger whose output is two optional plain-string
// callbacks instead of a file or stream, matching the external Log/warn
// callback interface (§6) the core is built against.
type Logger struct {
	entry *logrus.Entry
}

// callbackHook forwards formatted entries to LogFn/WarnFn.
type callbackHook struct {
	logFn  func(string)
	warnFn func(string)
}

func (h *callbackHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *callbackHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		line = e.Message
	}
	if e.Level <= logrus.WarnLevel {
		if h.warnFn != nil {
			h.warnFn(line)
		}
		return nil
	}
	if h.logFn != nil {
		h.logFn(line)
	}
	return nil
}

// New builds a Logger whose entries with component=name are forwarded to
// logFn/warnFn. Either may be nil.
func New(component string, logFn, warnFn func(string)) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: false})
	base.SetOutput(discard{})
	base.AddHook(&callbackHook{logFn: logFn, warnFn: warnFn})
	base.SetLevel(logrus.TraceLevel)
	return &Logger{entry: base.WithField("component", component)}
}

func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// discard is an io.Writer that drops everything; the hook is the only
// real sink, base logrus output would otherwise go to stderr.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
