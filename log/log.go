/*
Package log wraps github.com/sirupsen/logrus for gnmake. A single
package-level logger writes to stderr; Setup maps the command-line
verbosity options onto logrus levels. At debug level 2 and above the
calling function, file and line are attached to every message.
*/
package log

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

const skip = 2

var (
	log   *logrus.Logger
	debug int
)

func init() {
	log = logrus.New()
	log.Out = os.Stderr
	log.Level = logrus.WarnLevel
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
}

// Options selects how much gets logged.
type Options struct {
	// Verbose enables info messages.
	Verbose bool
	// Debug enables debug messages; higher values add detail.
	Debug int
	// Quiet restricts output to errors.
	Quiet bool
	// Color enables ANSI colors in the text formatter.
	Color bool
}

// Setup configures the package logger from opts.
func Setup(opts Options) {
	debug = opts.Debug
	switch {
	case opts.Debug > 0:
		log.Level = logrus.DebugLevel
	case opts.Verbose:
		log.Level = logrus.InfoLevel
	case opts.Quiet:
		log.Level = logrus.ErrorLevel
	default:
		log.Level = logrus.WarnLevel
	}
	log.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
		ForceColors:      opts.Color,
		DisableColors:    !opts.Color,
	}
}

// DebugLevel reports the configured debug detail, 0 when debugging is off.
func DebugLevel() int {
	return debug
}

// SetOutput sets the location to which log messages will be sent.
func SetOutput(out io.Writer) {
	log.Out = out
}

// SetLevel sets the level at which messages should be logged.
func SetLevel(level logrus.Level) {
	log.Level = level
}

// WithField returns an entry carrying key=value and the caller fields.
func WithField(key string, value any) *logrus.Entry {
	return log.WithFields(addCaller(logrus.Fields{key: value}))
}

// WithFields returns an entry carrying fields and the caller fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	f := logrus.Fields{}
	for k, v := range fields {
		f[k] = v
	}
	return log.WithFields(addCaller(f))
}

func Debugf(format string, args ...any) {
	log.WithFields(addCaller(logrus.Fields{})).Debugf(format, args...)
}

func Infof(format string, args ...any) {
	log.WithFields(addCaller(logrus.Fields{})).Infof(format, args...)
}

func Warnf(format string, args ...any) {
	log.WithFields(addCaller(logrus.Fields{})).Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	log.WithFields(addCaller(logrus.Fields{})).Errorf(format, args...)
}

func addCaller(fields logrus.Fields) logrus.Fields {
	if debug < 2 {
		return fields
	}
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return fields
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		fields["func"] = name
	}
	fields["file"] = filepath.Base(file)
	fields["line"] = line
	return fields
}
