// Package logging configures the slog logger shared by a unisync run.
//
// Records always go to the log file through a LineInterceptor. With Debug set,
// they are also rendered by tint on the debug writer (stderr by default), so
// stdout stays reserved for the wrapper's status lines.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

type Options struct {
	// Path of the log file. It is opened for appending and created if missing.
	Path string
	// Debug lowers the level to slog.LevelDebug and enables the console handler.
	Debug bool
	// DebugWriter receives the tint output when Debug is set. Defaults to os.Stderr.
	DebugWriter io.Writer
	// RunID tags every record. A random one is generated when empty.
	RunID string
}

// Logger wraps the configured slog.Logger together with the resources it owns.
type Logger struct {
	*slog.Logger
	RunID string

	interceptor *LineInterceptor
	file        *os.File
}

// Level maps the debug switch to a slog level.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New opens the log file and builds the handler chain.
func New(opts Options) (*Logger, error) {
	if opts.Path == "" {
		return nil, errors.New("log path is empty")
	}

	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	level := Level(opts.Debug)
	interceptor := NewLineInterceptor(file)
	fileHandler := slog.NewTextHandler(interceptor, &slog.HandlerOptions{
		Level: level,
		// The interceptor stamps each line with its own time.
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	var handler slog.Handler = fileHandler
	if opts.Debug {
		w := opts.DebugWriter
		if w == nil {
			w = os.Stderr
		}
		handler = NewMultiHandler(fileHandler, tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isTerminal(w),
		}))
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()[:8]
	}

	return &Logger{
		Logger:      slog.New(handler).With("run", runID),
		RunID:       runID,
		interceptor: interceptor,
		file:        file,
	}, nil
}

// Close flushes buffered output and closes the log file.
func (l *Logger) Close() error {
	return errors.Join(l.interceptor.Close(), l.file.Close())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
