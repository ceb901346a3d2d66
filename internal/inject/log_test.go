package inject

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/macro"
	"github.com/dshills/macroplay/internal/input/mouse"
)

var _ macro.Sink = (*LogSink)(nil)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	calls := []struct {
		call func() error
		want string
	}{
		{func() error { return sink.MoveRelative(0, -20) }, "msg=move component=inject dx=0 dy=-20"},
		{func() error { return sink.KeyDown(key.Special(key.KeyControl)) }, `msg="key down" component=inject key=Control`},
		{func() error { return sink.KeyUp(key.Char('a')) }, `msg="key up" component=inject key=a`},
		{func() error { return sink.ButtonDown(mouse.ButtonLeft) }, `msg="button down" component=inject button=left`},
		{func() error { return sink.ButtonUp(mouse.ButtonRight) }, `msg="button up" component=inject button=right`},
		{func() error { return sink.TypeText("hello world") }, `msg=type component=inject text="hello world"`},
	}

	for _, c := range calls {
		buf.Reset()
		if err := c.call(); err != nil {
			t.Fatalf("sink error = %v", err)
		}
		if !strings.Contains(buf.String(), c.want) {
			t.Errorf("log = %q, want it to contain %q", buf.String(), c.want)
		}
	}
}

func TestLogSinkPlayback(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	reg, err := macro.CompileString("greet:\ntype hi\nmove up 5\nend")
	if err != nil {
		t.Fatal(err)
	}
	if err := macro.NewPlayer(sink).Play(t.Context(), reg, "greet"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "text=hi") || !strings.Contains(out, "dy=-5") {
		t.Errorf("log = %q", out)
	}
}
