// Package cli holds the logging setup shared by the command line tools.
package cli

import (
	"context"
	"io"
	"log/slog"

	log "github.com/sirupsen/logrus"

	"github.com/coinbase/cb-rsa-go/pkg/logging"
)

// NewLogger returns the operator-facing logger. debug lowers the level to
// Debug; otherwise Info and above are written.
func NewLogger(out io.Writer, debug bool) *log.Logger {
	l := log.New()
	l.SetOutput(out)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: !debug, FullTimestamp: debug})
	l.SetLevel(log.InfoLevel)
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Library adapts l for the library packages, which log through slog.
func Library(l *log.Logger) logging.Logger {
	return logging.New(slog.New(&handler{entry: log.NewEntry(l)}))
}

// handler is a slog.Handler that forwards records to logrus.
type handler struct {
	entry *log.Entry
	group string
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.entry.Logger.IsLevelEnabled(toLogrus(level))
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	fields := log.Fields{}
	r.Attrs(func(a slog.Attr) bool {
		h.add(fields, h.group, a)
		return true
	})
	h.entry.WithFields(fields).Log(toLogrus(r.Level), r.Message)
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := log.Fields{}
	for _, a := range attrs {
		h.add(fields, h.group, a)
	}
	return &handler{entry: h.entry.WithFields(fields), group: h.group}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{entry: h.entry, group: join(h.group, name)}
}

func (h *handler) add(fields log.Fields, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.add(fields, join(prefix, a.Key), ga)
		}
		return
	}
	fields[join(prefix, a.Key)] = a.Value.Any()
}

func join(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func toLogrus(level slog.Level) log.Level {
	switch {
	case level >= slog.LevelError:
		return log.ErrorLevel
	case level >= slog.LevelWarn:
		return log.WarnLevel
	case level >= slog.LevelInfo:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}
