package trigger

import (
	"context"
	"fmt"
	"strings"
)

// commandFunc handles one control command.
type commandFunc func(d *Dispatcher, ctx context.Context, msg Message, args []string) Reply

type command struct {
	name    string
	aliases []string
	help    string
	run     commandFunc
}

var (
	// commands lists every control command in help order.
	commands []command
	// commandIndex maps every command name and alias to its command.
	commandIndex map[string]*command
)

func init() {
	commands = []command{
		{name: "start", aliases: []string{"start_discord_plays"}, help: "enable playback", run: (*Dispatcher).cmdStart},
		{name: "stop", aliases: []string{"stop_discord_plays"}, help: "disable playback", run: (*Dispatcher).cmdStop},
		{name: "reload", aliases: []string{"reload_actions"}, help: "recompile the macro source", run: (*Dispatcher).cmdReload},
		{name: "actions", help: "list macro names", run: (*Dispatcher).cmdActions},
		{name: "stats", aliases: []string{"commands"}, help: "show usage counters", run: (*Dispatcher).cmdStats},
		{name: "kill", help: "shut macroplay down", run: (*Dispatcher).cmdKill},
		{name: "help", help: "list commands", run: (*Dispatcher).cmdHelp},
	}
	commandIndex = make(map[string]*command)
	for i := range commands {
		c := &commands[i]
		commandIndex[c.name] = c
		for _, a := range c.aliases {
			commandIndex[a] = c
		}
	}
}

// parseCommand splits "<prefix>name args..." into a lowercase name and
// its arguments.
func parseCommand(prefix, text string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (d *Dispatcher) cmdStart(_ context.Context, msg Message, _ []string) Reply {
	d.SetEnabled(true)
	d.logger.Info("playback enabled", "author", msg.Author)
	return ok("playback enabled")
}

func (d *Dispatcher) cmdStop(_ context.Context, msg Message, _ []string) Reply {
	d.SetEnabled(false)
	d.logger.Info("playback disabled", "author", msg.Author)
	return ok("playback disabled")
}

func (d *Dispatcher) cmdReload(ctx context.Context, msg Message, _ []string) Reply {
	if d.reload == nil {
		return failed("reload is not available")
	}
	if err := d.reload(ctx); err != nil {
		d.logger.Error("reload failed", "author", msg.Author, "error", err)
		return failed(fmt.Sprintf("reload failed, keeping %d actions: %v", d.store.Load().Len(), err))
	}
	return ok(fmt.Sprintf("reloaded %d actions", d.store.Load().Len()))
}

func (d *Dispatcher) cmdKill(_ context.Context, msg Message, _ []string) Reply {
	if d.shutdown == nil {
		return failed("kill is not available")
	}
	d.logger.Warn("shutdown requested", "author", msg.Author)
	d.shutdown()
	return ok("shutting down")
}

func (d *Dispatcher) cmdActions(_ context.Context, _ Message, _ []string) Reply {
	names := d.store.Load().Names()
	if len(names) == 0 {
		return ok("no actions loaded")
	}
	return ok(strings.Join(names, "\n"))
}

func (d *Dispatcher) cmdStats(_ context.Context, _ Message, _ []string) Reply {
	return ok(d.usage.Report())
}

func (d *Dispatcher) cmdHelp(_ context.Context, _ Message, _ []string) Reply {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range commands {
		fmt.Fprintf(&b, "\n%s%s: %s", d.prefix, c.name, c.help)
	}
	return ok(b.String())
}
