package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/macroplay/internal/config"
	"github.com/dshills/macroplay/internal/config/watcher"
	"github.com/dshills/macroplay/internal/inject"
	"github.com/dshills/macroplay/internal/input/macro"
	"github.com/dshills/macroplay/internal/trigger"
)

// SinkFactory creates the injection sink named by playback.sink. The
// "log" sink is built in and never reaches the factory.
type SinkFactory func(kind string, logger *slog.Logger) (macro.Sink, error)

// Options configures application creation.
type Options struct {
	// ConfigPath is the config file; empty uses config.DefaultPath.
	ConfigPath string

	// ActionsPath overrides actions.path.
	ActionsPath string

	// LogLevel overrides log.level.
	LogLevel string

	// DryRun plays macros into the log sink.
	DryRun bool

	// Check loads the macro source without creating it and without
	// building an injection backend. Use App.Check to print the result.
	Check bool

	// NewSink builds the injection sink for non-log kinds.
	NewSink SinkFactory

	// ConfigOptions are passed to config.Load.
	ConfigOptions []config.Option

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// App is the running macroplay process.
type App struct {
	cfg     *config.Config
	logging *Logging
	logger  *slog.Logger

	store      *macro.Store
	player     *macro.Player
	dispatcher *trigger.Dispatcher
	watcher    *watcher.Watcher
	server     *trigger.Server

	stdin  io.Reader
	stdout io.Writer

	reloadMu     sync.Mutex
	running      atomic.Bool
	shutdownOnce sync.Once

	runMu     sync.Mutex
	cancelRun context.CancelFunc
}

// New loads the configuration and the macro source and wires every
// component. A macro source that fails to compile is an error.
func New(opts Options) (*App, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, opts.ConfigOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	if opts.ActionsPath != "" {
		cfg.Actions.Path = opts.ActionsPath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.DryRun || opts.Check {
		cfg.Playback.Sink = config.SinkLog
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	logging, err := NewLogging(cfg.Log, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	a := &App{
		cfg:     cfg,
		logging: logging,
		logger:  logging.Logger,
		stdin:   opts.Stdin,
		stdout:  opts.Stdout,
	}
	if cfg.Source != "" {
		a.logger.Info("loaded config", "path", cfg.Source)
	}

	reg, err := a.loadActions(opts.Check)
	if err != nil {
		logging.Close()
		return nil, err
	}
	a.store = macro.NewStore(reg)

	if opts.Check {
		return a, nil
	}

	sink, err := a.newSink(opts.NewSink)
	if err != nil {
		logging.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	a.player = macro.NewPlayer(sink,
		macro.WithMaxCallDepth(cfg.Playback.MaxCallDepth),
		macro.WithPlayerLogger(a.logger),
	)
	a.dispatcher = trigger.New(a.store, a.player,
		trigger.WithPrefix(cfg.Trigger.Prefix),
		trigger.WithEnabled(cfg.Playback.Enabled),
		trigger.WithReload(a.Reload),
		trigger.WithShutdown(a.Stop),
		trigger.WithLogger(a.logger),
	)

	if cfg.Actions.Watch {
		a.watcher = watcher.New(
			watcher.WithDebounce(time.Duration(cfg.Actions.DebounceMS)*time.Millisecond),
			watcher.WithLogger(a.logger),
		)
		if err := a.watcher.Watch(cfg.Actions.Path); err != nil {
			logging.Close()
			return nil, NewOperationError("watch", cfg.Actions.Path, err)
		}
	}

	if hook := cfg.Trigger.Webhook; hook.Listen != "" {
		wh := trigger.NewWebhook(a.dispatcher,
			trigger.WithContentPath(hook.ContentPath),
			trigger.WithAuthorPath(hook.AuthorPath),
			trigger.WithWebhookLogger(a.logger),
		)
		a.server = trigger.NewServer(hook.Listen, wh, a.logger)
	}

	return a, nil
}

func (a *App) loadActions(check bool) (*macro.Registry, error) {
	path := a.cfg.Actions.Path
	opt := macro.WithCompileLogger(a.logger)
	if check {
		reg, err := macro.Load(path, opt)
		if err != nil {
			return nil, NewOperationError("load actions", path, err)
		}
		return reg, nil
	}

	reg, created, err := macro.LoadOrCreate(path, opt)
	if err != nil {
		return nil, NewOperationError("load actions", path, err)
	}
	if created {
		a.logger.Info("created empty actions file", "path", path)
	}
	a.logger.Info("loaded actions", "path", path, "actions", reg.Len())
	return reg, nil
}

func (a *App) newSink(factory SinkFactory) (macro.Sink, error) {
	kind := a.cfg.Playback.Sink
	if kind == config.SinkLog {
		return inject.NewLogSink(a.logger), nil
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %s sink", ErrComponentNotAvailable, kind)
	}
	return factory(kind, a.logger)
}

// Config returns the effective configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Store returns the macro store.
func (a *App) Store() *macro.Store {
	return a.store
}

// Dispatcher returns the message dispatcher, nil in check mode.
func (a *App) Dispatcher() *trigger.Dispatcher {
	return a.dispatcher
}

// Check writes the loaded macros to w.
func (a *App) Check(w io.Writer) error {
	return macro.Dump(w, a.store.Load())
}

// Reload recompiles the macro source and swaps it into the store. A
// missing source is created empty and reloads to zero macros. On failure
// the previously loaded macros stay in effect.
func (a *App) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	path := a.cfg.Actions.Path
	reg, created, err := macro.LoadOrCreate(path, macro.WithCompileLogger(a.logger))
	if err != nil {
		kept := a.store.Load().Len()
		a.logger.Error("reload failed, keeping previous actions",
			"path", path, "actions", kept, "error", err)
		return NewOperationError("reload", path, err)
	}
	if created {
		a.logger.Warn("actions file was missing, created empty", "path", path)
	}
	prev := a.store.Swap(reg)
	a.logger.Info("reloaded actions", "path", path, "actions", reg.Len(), "previous", prev.Len())
	return nil
}
