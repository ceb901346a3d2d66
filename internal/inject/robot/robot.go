// Package robot injects real keyboard and mouse input through robotgo.
package robot

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// Sink injects OS input. Calls are serialized.
type Sink struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a robotgo sink.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger.With("component", "robot")}
}

// MoveRelative moves the cursor by (dx, dy) pixels.
func (s *Sink) MoveRelative(dx, dy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	robotgo.MoveRelative(dx, dy)
	return nil
}

// KeyDown presses a key.
func (s *Sink) KeyDown(c key.Code) error {
	return s.toggleKey(c, "down")
}

// KeyUp releases a key.
func (s *Sink) KeyUp(c key.Code) error {
	return s.toggleKey(c, "up")
}

func (s *Sink) toggleKey(c key.Code, state string) error {
	name, ok := KeyName(c)
	if !ok {
		return fmt.Errorf("no robotgo key for %v", c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := robotgo.KeyToggle(name, state); err != nil {
		return fmt.Errorf("key %s %s: %w", name, state, err)
	}
	return nil
}

// ButtonDown presses a mouse button.
func (s *Sink) ButtonDown(b mouse.Button) error {
	return s.toggleButton(b, "down")
}

// ButtonUp releases a mouse button.
func (s *Sink) ButtonUp(b mouse.Button) error {
	return s.toggleButton(b, "up")
}

func (s *Sink) toggleButton(b mouse.Button, state string) error {
	name, ok := ButtonName(b)
	if !ok {
		return errors.New("no mouse button")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := robotgo.Toggle(name, state); err != nil {
		return fmt.Errorf("mouse %s %s: %w", name, state, err)
	}
	return nil
}

// TypeText types text as a string of characters.
func (s *Sink) TypeText(text string) error {
	if text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	robotgo.TypeStr(text)
	s.logger.Debug("typed text", "length", len(text))
	return nil
}
