// Package log wraps slog with hierarchical message prefixes ("[sync][chains] ...")
// and optional output to a rotating log file.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dpotapov/slogpfx"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog.Logger that remembers its prefixes, so that packages can
// add their own prefix on top of the one they were handed.
type Logger struct {
	*slog.Logger

	rawLogLevel string
	output      io.Writer
	prefixes    []string
}

// Options configures a new logger.
type Options struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string

	// File, if set, sends output to a rotating file instead of stderr.
	File string

	// Output overrides both File and stderr. Used by tests.
	Output io.Writer

	Prefixes []string
}

// Default logs to stderr at info level.
func Default() *Logger {
	return New(Options{Level: "info"})
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Level: "error", Output: io.Discard})
}

// New creates a logger from options.
func New(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
		if opts.File != "" {
			output = &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
		}
	}

	slogger := newSlogger(opts.Level, output)
	return newLoggerWithSlogger(slogger, opts.Level, output, opts.Prefixes)
}

func newLoggerWithSlogger(slogger *slog.Logger, rawLogLevel string, output io.Writer, prefixes []string) *Logger {
	prefix := strings.Join(prefixes, "")

	return &Logger{
		Logger:      slogger.With(prefixKey, prefix),
		rawLogLevel: rawLogLevel,
		output:      output,
		prefixes:    prefixes,
	}
}

// ApplyPrefix returns a logger with prefix appended to the existing ones.
func (l *Logger) ApplyPrefix(prefix string) *Logger {
	prefixes := make([]string, 0, len(l.prefixes)+1)
	prefixes = append(prefixes, l.prefixes...)
	prefixes = append(prefixes, prefix)

	return newLoggerWithSlogger(l.Logger, l.rawLogLevel, l.output, prefixes)
}

// With adds attributes to every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:      l.Logger.With(args...),
		rawLogLevel: l.rawLogLevel,
		output:      l.output,
		prefixes:    l.prefixes,
	}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if closer, ok := l.output.(*lumberjack.Logger); ok {
		return closer.Close()
	}
	return nil
}

// Values sent to this key are rendered as the message prefix by slogpfx.
const prefixKey = "_prefixKey"

func newSlogger(rawLogLevel string, output io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLogLevel(rawLogLevel))

	textHandler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: lvl,
	})

	// The slogpfx default joins prefixes with '>'.
	prefixFormatter := func(prefixes []slog.Value) string {
		p := make([]string, 0, len(prefixes))
		for _, prefix := range prefixes {
			if prefix.Any() == nil || prefix.String() == "" {
				continue
			}
			p = append(p, prefix.String())
		}
		if len(p) == 0 {
			return ""
		}
		return strings.Join(p, "") + " "
	}

	prefixHandler := slogpfx.NewHandler(textHandler, &slogpfx.HandlerOptions{
		PrefixKeys:      []string{prefixKey},
		PrefixFormatter: prefixFormatter,
	})

	return slog.New(prefixHandler)
}
