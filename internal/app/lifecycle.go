package app

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/dshills/macroplay/internal/config/watcher"
	"github.com/dshills/macroplay/internal/trigger"
)

// Run starts the actions watcher and every enabled trigger source and
// blocks until ctx is done or the sources finish. When stdin is the only
// source, end of input stops the application.
func (a *App) Run(ctx context.Context) error {
	if a.dispatcher == nil {
		return ErrComponentNotAvailable
	}
	stdin := a.cfg.Trigger.Stdin
	if !stdin && a.server == nil {
		return ErrNoTriggerSource
	}
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.runMu.Lock()
	a.cancelRun = cancel
	a.runMu.Unlock()
	defer func() {
		a.runMu.Lock()
		a.cancelRun = nil
		a.runMu.Unlock()
	}()

	if a.watcher != nil {
		a.watcher.OnChange(func(ev watcher.Event) {
			a.actionsChanged(ctx, ev)
		})
		if err := a.watcher.Start(); err != nil {
			return NewOperationError("watch", a.cfg.Actions.Path, err)
		}
		defer a.watcher.Stop()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancel()
	}

	if a.server != nil {
		wg.Go(func() {
			if err := a.server.Run(ctx); err != nil {
				fail(NewOperationError("serve webhook", a.cfg.Trigger.Webhook.Listen, err))
			}
		})
	}
	if stdin {
		lines := a.lineSource()
		wg.Go(func() {
			if err := lines.Run(ctx); err != nil {
				fail(err)
				return
			}
			if a.server == nil {
				cancel()
			}
		})
	}

	a.logger.Info("macroplay running",
		"actions", a.store.Load().Len(),
		"enabled", a.dispatcher.Enabled(),
		"stdin", stdin,
		"webhook", a.cfg.Trigger.Webhook.Listen,
	)
	wg.Wait()
	a.logger.Info("macroplay stopped")
	return errors.Join(errs...)
}

func (a *App) lineSource() *trigger.LineSource {
	prompt := ""
	if f, ok := a.stdin.(*os.File); ok {
		prompt = trigger.TerminalPrompt(f)
	}
	return trigger.NewLineSource(a.stdin, a.stdout, a.dispatcher,
		trigger.WithPrompt(prompt),
		trigger.WithLineLogger(a.logger),
	)
}

// actionsChanged reloads the macro source after it changed on disk.
func (a *App) actionsChanged(ctx context.Context, ev watcher.Event) {
	switch ev.Op {
	case watcher.OpRemove, watcher.OpRename:
		a.logger.Warn("actions file removed, keeping loaded actions", "path", ev.Path)
		return
	}
	// Failures are logged by Reload.
	_ = a.Reload(ctx)
}

// Stop makes an active Run return. It backs the kill command.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.cancelRun != nil {
		a.cancelRun()
	}
}

// IsRunning reports whether Run is active.
func (a *App) IsRunning() bool {
	return a.running.Load()
}

// Shutdown releases the watcher and the log file. It is safe to call
// more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.watcher != nil {
			a.watcher.Stop()
		}
		_ = a.logging.Close()
	})
}
