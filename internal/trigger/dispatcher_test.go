package trigger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/macro"
	"github.com/dshills/macroplay/internal/input/mouse"
)

type fakeSink struct {
	mu     sync.Mutex
	events []string
	fail   error
}

func (s *fakeSink) add(ev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *fakeSink) MoveRelative(dx, dy int) error { return s.add(fmt.Sprintf("move %d %d", dx, dy)) }

func (s *fakeSink) KeyDown(c key.Code) error { return s.add("down " + c.String()) }

func (s *fakeSink) KeyUp(c key.Code) error { return s.add("up " + c.String()) }

func (s *fakeSink) ButtonDown(b mouse.Button) error { return s.add("mouse down " + b.String()) }

func (s *fakeSink) ButtonUp(b mouse.Button) error { return s.add("mouse up " + b.String()) }

func (s *fakeSink) TypeText(text string) error { return s.add("type " + text) }

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

const testSource = `
greet:
    type hello
    wait 100
end
up:
    move up 20
end
`

func newTestDispatcher(t *testing.T, opts ...Option) (*Dispatcher, *fakeSink, *macro.Store) {
	t.Helper()
	reg, err := macro.CompileString(testSource)
	if err != nil {
		t.Fatal(err)
	}
	store := macro.NewStore(reg)
	sink := &fakeSink{}
	player := macro.NewPlayer(sink, macro.WithSleeper(noSleep))
	return New(store, player, opts...), sink, store
}

func TestDispatcherDisabledByDefault(t *testing.T) {
	d, sink, _ := newTestDispatcher(t)
	if d.Enabled() {
		t.Fatal("Enabled() = true, want false")
	}
	if r := d.Handle(t.Context(), Message{Text: "greet"}); r.Kind != ReplyNone {
		t.Errorf("Handle() = %+v, want none", r)
	}
	if len(sink.Events()) != 0 {
		t.Errorf("events = %v, want none", sink.Events())
	}
}

func TestDispatcherStartPlayStop(t *testing.T) {
	d, sink, _ := newTestDispatcher(t)
	ctx := t.Context()

	if r := d.Handle(ctx, Message{Text: "!start"}); r.Kind != ReplyOK {
		t.Fatalf("!start = %+v", r)
	}

	r := d.Handle(ctx, Message{Text: "up", Author: "alice"})
	if r.Kind != ReplyOK || r.Action != "up" || r.RunID == "" {
		t.Errorf("Handle(up) = %+v", r)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"move 0 -20"}) {
		t.Errorf("events = %v", got)
	}

	if r := d.Handle(ctx, Message{Text: "!stop"}); r.Kind != ReplyOK {
		t.Fatalf("!stop = %+v", r)
	}
	if r := d.Handle(ctx, Message{Text: "up"}); r.Kind != ReplyNone {
		t.Errorf("Handle(up) after stop = %+v", r)
	}
	if got := len(sink.Events()); got != 1 {
		t.Errorf("played %d moves, want 1", got)
	}
}

func TestDispatcherExactMatch(t *testing.T) {
	d, sink, _ := newTestDispatcher(t, WithEnabled(true))
	for _, text := range []string{"Greet", "greet ", " greet", "greet please", ""} {
		if r := d.Handle(t.Context(), Message{Text: text}); r.Kind != ReplyNone {
			t.Errorf("Handle(%q) = %+v, want none", text, r)
		}
	}
	if len(sink.Events()) != 0 {
		t.Errorf("events = %v, want none", sink.Events())
	}
}

func TestDispatcherRunIDsAreUnique(t *testing.T) {
	d, _, _ := newTestDispatcher(t, WithEnabled(true))
	a := d.Handle(t.Context(), Message{Text: "greet"})
	b := d.Handle(t.Context(), Message{Text: "greet"})
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run ids %q and %q should be distinct and non-empty", a.RunID, b.RunID)
	}
}

func TestDispatcherPlaybackFailure(t *testing.T) {
	d, sink, _ := newTestDispatcher(t, WithEnabled(true))
	sink.fail = errors.New("no display")

	r := d.Handle(t.Context(), Message{Text: "greet"})
	if r.Kind != ReplyFailed {
		t.Fatalf("Handle() = %+v, want failed", r)
	}
	if !strings.Contains(r.Text, "no display") {
		t.Errorf("Text = %q", r.Text)
	}
	au, _ := d.Usage().Action("greet")
	if au.PlayCount != 1 || au.ErrorCount != 1 {
		t.Errorf("usage = %+v", au)
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	r := d.Handle(t.Context(), Message{Text: "!dance"})
	if r.Kind != ReplyFailed || !strings.Contains(r.Text, "dance") {
		t.Errorf("Handle(!dance) = %+v", r)
	}
}

func TestDispatcherCommandAliasesAndCase(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	d.Handle(t.Context(), Message{Text: "!START_DISCORD_PLAYS"})
	if !d.Enabled() {
		t.Error("alias should enable playback")
	}
	d.Handle(t.Context(), Message{Text: "!stop_discord_plays"})
	if d.Enabled() {
		t.Error("alias should disable playback")
	}
	if got := d.Usage().CommandCount("start"); got != 1 {
		t.Errorf("CommandCount(start) = %d, want 1", got)
	}
}

func TestDispatcherCustomPrefix(t *testing.T) {
	d, _, _ := newTestDispatcher(t, WithPrefix("d!"))
	if r := d.Handle(t.Context(), Message{Text: "!start"}); r.Kind != ReplyNone {
		t.Errorf("old prefix should be ignored, got %+v", r)
	}
	if r := d.Handle(t.Context(), Message{Text: "d!start"}); r.Kind != ReplyOK || !d.Enabled() {
		t.Errorf("d!start = %+v", r)
	}
}

func TestDispatcherActionsAndHelp(t *testing.T) {
	d, _, store := newTestDispatcher(t)

	r := d.Handle(t.Context(), Message{Text: "!actions"})
	if r.Text != "greet\nup" {
		t.Errorf("!actions = %q", r.Text)
	}

	store.Swap(macro.NewRegistry())
	if r := d.Handle(t.Context(), Message{Text: "!actions"}); r.Text != "no actions loaded" {
		t.Errorf("!actions on empty = %q", r.Text)
	}

	r = d.Handle(t.Context(), Message{Text: "!help"})
	for _, name := range []string{"!start", "!stop", "!reload", "!actions", "!stats", "!kill", "!help"} {
		if !strings.Contains(r.Text, name) {
			t.Errorf("!help missing %s:\n%s", name, r.Text)
		}
	}
}

func TestDispatcherReload(t *testing.T) {
	var d *Dispatcher
	var store *macro.Store
	src := "greet:\nend\n"
	reload := func(ctx context.Context) error {
		reg, err := macro.CompileString(src)
		if err != nil {
			return err
		}
		store.Swap(reg)
		return nil
	}
	d, _, store = newTestDispatcher(t, WithReload(reload))

	r := d.Handle(t.Context(), Message{Text: "!reload"})
	if r.Kind != ReplyOK || r.Text != "reloaded 1 actions" {
		t.Errorf("!reload = %+v", r)
	}

	src = "a:\ntype x\nb:\nend\n"
	r = d.Handle(t.Context(), Message{Text: "!reload"})
	if r.Kind != ReplyFailed || !strings.Contains(r.Text, "keeping 1 actions") {
		t.Errorf("failed !reload = %+v", r)
	}
	if _, ok := store.Load().Lookup("greet"); !ok {
		t.Error("failed reload should keep the previous registry")
	}
}

func TestDispatcherReloadUnavailable(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	if r := d.Handle(t.Context(), Message{Text: "!reload"}); r.Kind != ReplyFailed {
		t.Errorf("!reload = %+v, want failed", r)
	}
}

func TestDispatcherKill(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	if r := d.Handle(t.Context(), Message{Text: "!kill"}); r.Kind != ReplyFailed {
		t.Errorf("!kill without shutdown = %+v, want failed", r)
	}

	calls := 0
	d, _, _ = newTestDispatcher(t, WithShutdown(func() { calls++ }))
	r := d.Handle(t.Context(), Message{Text: "!KILL"})
	if r.Kind != ReplyOK || r.Text != "shutting down" {
		t.Errorf("!kill = %+v", r)
	}
	if calls != 1 {
		t.Errorf("shutdown calls = %d, want 1", calls)
	}
}

func TestDispatcherSetEnabled(t *testing.T) {
	d, sink, _ := newTestDispatcher(t)
	d.SetEnabled(true)
	if r := d.Handle(t.Context(), Message{Text: "greet"}); r.Kind != ReplyOK {
		t.Fatalf("greet after SetEnabled(true) = %+v", r)
	}
	d.SetEnabled(false)
	if r := d.Handle(t.Context(), Message{Text: "greet"}); r.Kind != ReplyNone {
		t.Errorf("greet after SetEnabled(false) = %+v", r)
	}
	if len(sink.Events()) == 0 {
		t.Error("no events recorded while enabled")
	}
}

func TestDispatcherSerializesMessages(t *testing.T) {
	reg, err := macro.CompileString("slow:\nwait 1\ntype done\nend\n")
	if err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	sink := &fakeSink{}
	player := macro.NewPlayer(sink, macro.WithSleeper(func(ctx context.Context, _ time.Duration) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	}))
	d := New(macro.NewStore(reg), player, WithEnabled(true))

	first := make(chan Reply, 1)
	go func() { first <- d.Handle(context.Background(), Message{Text: "slow"}) }()
	<-entered

	second := make(chan Reply, 1)
	go func() { second <- d.Handle(context.Background(), Message{Text: "!stop"}) }()

	select {
	case r := <-second:
		t.Fatalf("command evaluated during playback: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if r := <-first; r.Kind != ReplyOK {
		t.Errorf("first = %+v", r)
	}
	if r := <-second; r.Kind != ReplyOK {
		t.Errorf("second = %+v", r)
	}
	if d.Enabled() {
		t.Error("!stop should have run after the playback")
	}
}

func TestDispatcherSnapshotDuringPlayback(t *testing.T) {
	reg, err := macro.CompileString("outer:\nwait 1\ninner\nend\ninner:\ntype old\nend\n")
	if err != nil {
		t.Fatal(err)
	}
	store := macro.NewStore(reg)
	next, err := macro.CompileString("outer:\nend\ninner:\ntype new\nend\n")
	if err != nil {
		t.Fatal(err)
	}

	sink := &fakeSink{}
	player := macro.NewPlayer(sink, macro.WithSleeper(func(ctx context.Context, _ time.Duration) error {
		// A reload lands while outer is waiting.
		store.Swap(next)
		return nil
	}))
	d := New(store, player, WithEnabled(true))

	if r := d.Handle(t.Context(), Message{Text: "outer"}); r.Kind != ReplyOK {
		t.Fatalf("Handle() = %+v", r)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type old"}) {
		t.Errorf("events = %v, want the snapshot taken at trigger time", got)
	}
}

func TestDispatcherStats(t *testing.T) {
	d, _, _ := newTestDispatcher(t, WithEnabled(true))
	d.Handle(t.Context(), Message{Text: "greet"})
	d.Handle(t.Context(), Message{Text: "greet"})
	d.Handle(t.Context(), Message{Text: "!actions"})

	r := d.Handle(t.Context(), Message{Text: "!stats"})
	for _, want := range []string{"- actions: 1", "- greet: 2", "- stats: 1"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("!stats missing %q:\n%s", want, r.Text)
		}
	}
}
