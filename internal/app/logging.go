package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"

	"github.com/dshills/macroplay/internal/config"
)

// detectService reports whether the process runs as a systemd service.
var detectService = isSystemdService

// Logging owns the process logger and its outputs.
type Logging struct {
	Logger *slog.Logger
	Level  *slog.LevelVar

	file *os.File
}

// NewLogging builds the logger described by cfg. Records go to the log
// file when one is set, otherwise to stderr. The systemd journal is
// added when cfg.Journal is set or the process runs as a service; a
// service without a log file logs to the journal only.
func NewLogging(cfg config.LogConfig, stderr io.Writer) (*Logging, error) {
	lvl, err := config.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	l := &Logging{Level: new(slog.LevelVar)}
	l.Level.Set(lvl)

	service := detectService()

	var handlers []slog.Handler
	var local slog.Handler
	writer := stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = f
		writer = f
	}
	if cfg.File != "" || !service {
		local = newFormatHandler(cfg.Format, writer, l.Level)
		handlers = append(handlers, local)
	}

	if cfg.Journal || service {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: l.Level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			if local == nil {
				local = newFormatHandler(cfg.Format, writer, l.Level)
				handlers = append(handlers, local)
			}
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = local.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journal)
		}
	}

	if len(handlers) == 1 {
		l.Logger = slog.New(handlers[0])
	} else {
		l.Logger = slog.New(slogmulti.Fanout(handlers...))
	}
	return l, nil
}

// Close closes the log file, if any.
func (l *Logging) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func newFormatHandler(format string, w io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// toJournalKey maps an attribute key to a valid journal field name.
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	return isServiceCgroup(string(content))
}

// isServiceCgroup reports whether a /proc/self/cgroup line places the
// process inside a systemd .service unit.
func isServiceCgroup(content string) bool {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 3 {
		return false
	}
	unit := parts[2]
	return strings.HasSuffix(unit, ".service") || strings.HasSuffix(path.Dir(unit), ".service")
}
