package inject

import (
	"context"
	"log/slog"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// LogSink writes every primitive to a logger instead of injecting it.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a sink that logs at info level. A nil logger
// uses slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "inject"), level: slog.LevelInfo}
}

func (s *LogSink) log(msg string, args ...any) error {
	s.logger.Log(context.Background(), s.level, msg, args...)
	return nil
}

// MoveRelative logs a cursor move.
func (s *LogSink) MoveRelative(dx, dy int) error {
	return s.log("move", "dx", dx, "dy", dy)
}

// KeyDown logs a key press.
func (s *LogSink) KeyDown(c key.Code) error {
	return s.log("key down", "key", c.String())
}

// KeyUp logs a key release.
func (s *LogSink) KeyUp(c key.Code) error {
	return s.log("key up", "key", c.String())
}

// ButtonDown logs a mouse button press.
func (s *LogSink) ButtonDown(b mouse.Button) error {
	return s.log("button down", "button", b.String())
}

// ButtonUp logs a mouse button release.
func (s *LogSink) ButtonUp(b mouse.Button) error {
	return s.log("button up", "button", b.String())
}

// TypeText logs typed text.
func (s *LogSink) TypeText(text string) error {
	return s.log("type", "text", text)
}
