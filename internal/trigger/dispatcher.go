package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/macroplay/internal/input/macro"
)

// DefaultPrefix starts a control command.
const DefaultPrefix = "!"

// ReloadFunc recompiles the macro source and swaps it into the store.
type ReloadFunc func(ctx context.Context) error

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix sets the command prefix.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		d.prefix = prefix
	}
}

// WithEnabled sets whether playback starts enabled.
func WithEnabled(enabled bool) Option {
	return func(d *Dispatcher) {
		d.enabled.Store(enabled)
	}
}

// WithReload sets the function run by the reload command.
func WithReload(fn ReloadFunc) Option {
	return func(d *Dispatcher) {
		d.reload = fn
	}
}

// WithShutdown sets the function run by the kill command.
func WithShutdown(fn func()) Option {
	return func(d *Dispatcher) {
		d.shutdown = fn
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher evaluates messages one at a time.
type Dispatcher struct {
	// mu serializes Handle: no message is evaluated while a playback runs.
	mu sync.Mutex

	store    *macro.Store
	player   *macro.Player
	reload   ReloadFunc
	shutdown func()
	prefix   string
	enabled  atomic.Bool
	usage    *Usage
	logger   *slog.Logger
}

// New creates a dispatcher that plays macros from store with player.
// Playback starts disabled.
func New(store *macro.Store, player *macro.Player, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		player: player,
		prefix: DefaultPrefix,
		usage:  NewUsage(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "trigger")
	return d
}

// Enabled reports whether playback is enabled.
func (d *Dispatcher) Enabled() bool {
	return d.enabled.Load()
}

// SetEnabled enables or disables playback.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
}

// Usage returns the usage counters.
func (d *Dispatcher) Usage() *Usage {
	return d.usage
}

// Handle evaluates one message and waits for any playback it starts.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name, args, isCmd := parseCommand(d.prefix, msg.Text); isCmd {
		return d.runCommand(ctx, msg, name, args)
	}

	if !d.enabled.Load() {
		return Reply{}
	}

	reg := d.store.Load()
	m, found := reg.Lookup(msg.Text)
	if !found {
		return Reply{}
	}
	return d.play(ctx, msg, reg, m)
}

func (d *Dispatcher) runCommand(ctx context.Context, msg Message, name string, args []string) Reply {
	c, found := commandIndex[name]
	if !found {
		d.logger.Debug("unknown command", "command", name, "author", msg.Author)
		return failed(fmt.Sprintf("unknown command %q, try %shelp", name, d.prefix))
	}
	d.usage.RecordCommand(c.name)
	reply := c.run(d, ctx, msg, args)
	d.logger.Info("processed command", "command", c.name, "author", msg.Author, "result", reply.Kind.String())
	return reply
}

func (d *Dispatcher) play(ctx context.Context, msg Message, reg *macro.Registry, m *macro.Macro) Reply {
	runID := uuid.NewString()
	logger := d.logger.With("run_id", runID, "action", m.Name, "author", msg.Author, "source", msg.Source)
	logger.Info("playing action")

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- d.player.Run(ctx, reg, m)
	}()
	err := <-done
	elapsed := time.Since(start)
	d.usage.RecordPlay(m.Name, elapsed, err)

	reply := Reply{Kind: ReplyOK, Action: m.Name, RunID: runID}
	if err != nil {
		logger.Error("action failed", "error", err, "elapsed", elapsed)
		reply.Kind = ReplyFailed
		reply.Text = err.Error()
		return reply
	}
	logger.Info("action finished", "elapsed", elapsed)
	return reply
}
