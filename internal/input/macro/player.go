package macro

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// Sink performs input injection. Each method maps to one primitive;
// the player never batches or reorders calls.
type Sink interface {
	MoveRelative(dx, dy int) error
	KeyDown(c key.Code) error
	KeyUp(c key.Code) error
	ButtonDown(b mouse.Button) error
	ButtonUp(b mouse.Button) error
	TypeText(text string) error
}

// Sleeper suspends the caller for d, returning early with an error if
// ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithMaxCallDepth limits how deeply macros may call one another.
// Zero, the default, means no limit.
func WithMaxCallDepth(depth int) PlayerOption {
	return func(p *Player) {
		if depth >= 0 {
			p.maxDepth = depth
		}
	}
}

// WithSleeper replaces the wall-clock sleeper used by wait.
func WithSleeper(sleep Sleeper) PlayerOption {
	return func(p *Player) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithPlayerLogger sets the logger used for playback records.
func WithPlayerLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player executes compiled macros against a Sink. A Player runs one
// macro at a time.
type Player struct {
	sink     Sink
	sleep    Sleeper
	logger   *slog.Logger
	maxDepth int
	playing  atomic.Bool
}

// NewPlayer creates a player that injects through sink.
func NewPlayer(sink Sink, opts ...PlayerOption) *Player {
	p := &Player{
		sink:   sink,
		sleep:  sleepContext,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsPlaying reports whether a macro is currently being played.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Play looks up name in reg and plays it to completion.
func (p *Player) Play(ctx context.Context, reg *Registry, name string) error {
	m, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMacro, name)
	}
	return p.Run(ctx, reg, m)
}

// Run plays m to completion. Calls inside m are resolved against reg.
// Playback stops at the first error; no cleanup is injected, so keys or
// buttons pressed before the failure stay pressed.
func (p *Player) Run(ctx context.Context, reg *Registry, m *Macro) error {
	if m == nil {
		return fmt.Errorf("%w: nil macro", ErrUnknownMacro)
	}
	if !p.playing.CompareAndSwap(false, true) {
		return ErrAlreadyPlaying
	}
	defer p.playing.Store(false)

	start := time.Now()
	err := p.run(ctx, reg, m, 0)
	if err != nil {
		p.logger.Debug("macro playback failed", "macro", m.Name, "error", err)
		return err
	}
	p.logger.Debug("macro played", "macro", m.Name, "elapsed", time.Since(start))
	return nil
}

func (p *Player) run(ctx context.Context, reg *Registry, m *Macro, depth int) error {
	for _, in := range m.Instructions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if in.Op == OpEnd {
			return nil
		}
		if err := p.exec(ctx, reg, in, depth); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %q", ErrMissingTerminator, m.Name)
}

func (p *Player) exec(ctx context.Context, reg *Registry, in Instruction, depth int) error {
	switch in.Op {
	case OpMove:
		dx, dy := in.Direction.Delta(in.Distance)
		return inject("move", p.sink.MoveRelative(dx, dy))

	case OpKey:
		if in.Release {
			return inject("key up", p.sink.KeyUp(in.Key))
		}
		return inject("key down", p.sink.KeyDown(in.Key))

	case OpButton:
		if in.Release {
			return inject("button up", p.sink.ButtonUp(in.Button))
		}
		return inject("button down", p.sink.ButtonDown(in.Button))

	case OpWait:
		return p.sleep(ctx, millis(in.Millis))

	case OpType:
		return inject("type", p.sink.TypeText(in.Text))

	case OpCall:
		if p.maxDepth > 0 && depth >= p.maxDepth {
			return fmt.Errorf("%w: calling %q at depth %d", ErrCallDepthExceeded, in.Name, depth+1)
		}
		target, ok := reg.Lookup(in.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMacro, in.Name)
		}
		return p.run(ctx, reg, target, depth+1)
	}
	return fmt.Errorf("%w: %v", ErrInvalidInstruction, in.Op)
}

func inject(op string, err error) error {
	if err != nil {
		return &InjectionError{Op: op, Err: err}
	}
	return nil
}

// millis converts ms to a Duration, saturating instead of overflowing.
func millis(ms uint64) time.Duration {
	const limit = uint64(math.MaxInt64 / int64(time.Millisecond))
	if ms > limit {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
