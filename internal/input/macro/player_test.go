package macro

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// recordingSink records every injected primitive as a string.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	failOn string
}

func (s *recordingSink) record(ev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && ev == s.failOn {
		return errors.New("device unavailable")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *recordingSink) MoveRelative(dx, dy int) error {
	return s.record(fmt.Sprintf("move %d %d", dx, dy))
}

func (s *recordingSink) KeyDown(c key.Code) error { return s.record("down " + c.String()) }

func (s *recordingSink) KeyUp(c key.Code) error { return s.record("up " + c.String()) }

func (s *recordingSink) ButtonDown(b mouse.Button) error { return s.record("mouse down " + b.String()) }

func (s *recordingSink) ButtonUp(b mouse.Button) error { return s.record("mouse up " + b.String()) }

func (s *recordingSink) TypeText(text string) error { return s.record("type " + text) }

// fakeSleeper records waits instead of sleeping. Waits are also recorded
// on the sink so ordering against injections can be checked.
type fakeSleeper struct {
	sink  *recordingSink
	waits []time.Duration
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	if f.sink != nil {
		f.sink.record("wait " + d.String())
	}
	return ctx.Err()
}

func newTestPlayer(opts ...PlayerOption) (*Player, *recordingSink, *fakeSleeper) {
	sink := &recordingSink{}
	sleeper := &fakeSleeper{sink: sink}
	opts = append([]PlayerOption{WithSleeper(sleeper.Sleep)}, opts...)
	return NewPlayer(sink, opts...), sink, sleeper
}

func TestPlayGreet(t *testing.T) {
	reg := mustCompile(t, "greet:\n    type hello\n    wait 100\nend\n")
	if got := body(t, reg, "greet"); !slices.Equal(got, []Instruction{Type("hello"), Wait(100), End()}) {
		t.Fatalf("greet = %v", got)
	}

	p, sink, sleeper := newTestPlayer()
	if err := p.Play(context.Background(), reg, "greet"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	want := []string{"type hello", "wait 100ms"}
	if got := sink.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if !slices.Equal(sleeper.waits, []time.Duration{100 * time.Millisecond}) {
		t.Errorf("waits = %v", sleeper.waits)
	}
}

func TestPlayHoldMouse(t *testing.T) {
	reg := mustCompile(t, "combo:\nhold mouse left 50\nend")
	p, sink, _ := newTestPlayer()
	if err := p.Play(context.Background(), reg, "combo"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	want := []string{"mouse down left", "wait 50ms", "mouse up left"}
	if got := sink.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestPlayMoveDirections(t *testing.T) {
	reg := mustCompile(t, "m:\nmove up 20\nmove down 20\nmove left 7\nmove right 7\nend")
	p, sink, _ := newTestPlayer()
	if err := p.Play(context.Background(), reg, "m"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	want := []string{"move 0 -20", "move 0 20", "move -7 0", "move 7 0"}
	if got := sink.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestPlayCallReturnsToCaller(t *testing.T) {
	src := `
outer:
    type a
    inner
    type c
end
inner:
    press ctrl
    type b
    release ctrl
end
`
	reg := mustCompile(t, src)
	p, sink, _ := newTestPlayer()
	if err := p.Play(context.Background(), reg, "outer"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	want := []string{"type a", "down Control", "type b", "up Control", "type c"}
	if got := sink.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestPlayUnknownMacro(t *testing.T) {
	p, sink, _ := newTestPlayer()
	err := p.Play(context.Background(), NewRegistry(), "nope")
	if !errors.Is(err, ErrUnknownMacro) {
		t.Errorf("Play() error = %v, want ErrUnknownMacro", err)
	}
	if len(sink.Events()) != 0 {
		t.Errorf("events = %v, want none", sink.Events())
	}
}

func TestPlayCallResolvedAtPlayback(t *testing.T) {
	// A call to a name absent from the registry fails when reached.
	reg := NewRegistry(&Macro{Name: "m", Instructions: []Instruction{Type("x"), Call("gone"), End()}})
	p, sink, _ := newTestPlayer()
	err := p.Play(context.Background(), reg, "m")
	if !errors.Is(err, ErrUnknownMacro) {
		t.Errorf("Play() error = %v, want ErrUnknownMacro", err)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type x"}) {
		t.Errorf("events = %v", got)
	}
}

func TestPlayMissingTerminator(t *testing.T) {
	reg := NewRegistry(&Macro{Name: "m", Instructions: []Instruction{Type("x")}})
	p, sink, _ := newTestPlayer()
	err := p.Play(context.Background(), reg, "m")
	if !errors.Is(err, ErrMissingTerminator) {
		t.Errorf("Play() error = %v, want ErrMissingTerminator", err)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type x"}) {
		t.Errorf("events = %v", got)
	}
}

func TestPlayStopsAtEnd(t *testing.T) {
	reg := NewRegistry(&Macro{Name: "m", Instructions: []Instruction{Type("x"), End(), Type("never")}})
	p, sink, _ := newTestPlayer()
	if err := p.Play(context.Background(), reg, "m"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type x"}) {
		t.Errorf("events = %v", got)
	}
}

func TestPlayInjectionErrorStops(t *testing.T) {
	reg := mustCompile(t, "m:\npress shift\npress a\nrelease a\nrelease shift\nend")
	p, sink, _ := newTestPlayer()
	sink.failOn = "down a"

	err := p.Play(context.Background(), reg, "m")
	var ie *InjectionError
	if !errors.As(err, &ie) {
		t.Fatalf("Play() error = %v, want *InjectionError", err)
	}
	if ie.Op != "key down" {
		t.Errorf("Op = %q, want key down", ie.Op)
	}
	// Shift stays pressed: no cleanup is injected.
	if got := sink.Events(); !slices.Equal(got, []string{"down Shift"}) {
		t.Errorf("events = %v", got)
	}
}

func TestPlayCallDepth(t *testing.T) {
	src := "a:\nb\nend\nb:\nc\nend\nc:\ntype deep\nend"
	reg := mustCompile(t, src)

	p, sink, _ := newTestPlayer(WithMaxCallDepth(2))
	if err := p.Play(context.Background(), reg, "a"); err != nil {
		t.Fatalf("depth 2: Play() error = %v", err)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type deep"}) {
		t.Errorf("events = %v", got)
	}

	p, sink, _ = newTestPlayer(WithMaxCallDepth(1))
	err := p.Play(context.Background(), reg, "a")
	if !errors.Is(err, ErrCallDepthExceeded) {
		t.Errorf("depth 1: Play() error = %v, want ErrCallDepthExceeded", err)
	}
	if len(sink.Events()) != 0 {
		t.Errorf("events = %v, want none", sink.Events())
	}
}

func TestPlayRecursionWithLimit(t *testing.T) {
	reg := mustCompile(t, "loop:\ntype x\nloop\nend")
	p, sink, _ := newTestPlayer(WithMaxCallDepth(3))
	err := p.Play(context.Background(), reg, "loop")
	if !errors.Is(err, ErrCallDepthExceeded) {
		t.Fatalf("Play() error = %v, want ErrCallDepthExceeded", err)
	}
	if got := len(sink.Events()); got != 4 {
		t.Errorf("typed %d times, want 4", got)
	}
}

func TestPlayContextCanceled(t *testing.T) {
	reg := mustCompile(t, "m:\ntype a\nwait 10\ntype b\nend")

	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordingSink{}
	p := NewPlayer(sink, WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	err := p.Play(ctx, reg, "m")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Play() error = %v, want context.Canceled", err)
	}
	if got := sink.Events(); !slices.Equal(got, []string{"type a"}) {
		t.Errorf("events = %v", got)
	}
}

func TestPlayerRejectsOverlap(t *testing.T) {
	reg := mustCompile(t, "slow:\nwait 1\nend\nquick:\nend")

	entered := make(chan struct{})
	release := make(chan struct{})
	p := NewPlayer(&recordingSink{}, WithSleeper(func(ctx context.Context, d time.Duration) error {
		close(entered)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- p.Play(context.Background(), reg, "slow") }()
	<-entered

	if !p.IsPlaying() {
		t.Error("IsPlaying() = false during playback")
	}
	if err := p.Play(context.Background(), reg, "quick"); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("overlapping Play() error = %v, want ErrAlreadyPlaying", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("Play() error = %v", err)
	}
	if p.IsPlaying() {
		t.Error("IsPlaying() = true after playback")
	}
}

func TestPlayWallClockWait(t *testing.T) {
	reg := mustCompile(t, "m:\nwait 20\nend")
	p := NewPlayer(&recordingSink{})

	start := time.Now()
	if err := p.Play(context.Background(), reg, "m"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 20ms", elapsed)
	}
}

func TestMillisSaturates(t *testing.T) {
	if got := millis(5); got != 5*time.Millisecond {
		t.Errorf("millis(5) = %v", got)
	}
	if got := millis(^uint64(0)); got <= 0 {
		t.Errorf("millis(max) = %v, want a positive saturated duration", got)
	}
}
