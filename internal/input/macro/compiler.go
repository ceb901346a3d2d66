package macro

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// DefaultSourceName names a source compiled without WithSourceName.
const DefaultSourceName = "<source>"

// maxLineLength bounds a single source line.
const maxLineLength = 1 << 20

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

type compileConfig struct {
	path   string
	logger *slog.Logger
}

// WithSourceName sets the name reported in syntax errors.
func WithSourceName(name string) CompileOption {
	return func(c *compileConfig) {
		if name != "" {
			c.path = name
		}
	}
}

// WithCompileLogger logs one record for every macro the compiler finishes.
func WithCompileLogger(logger *slog.Logger) CompileOption {
	return func(c *compileConfig) {
		c.logger = logger
	}
}

// CompileString compiles macro source held in a string.
func CompileString(src string, opts ...CompileOption) (*Registry, error) {
	return Compile(strings.NewReader(src), opts...)
}

// Compile reads a complete macro source and compiles it into a Registry.
//
// Compilation makes two passes. The first collects every header so a
// macro may invoke any macro defined in the same source, including one
// defined later. The second compiles bodies. Any error aborts the whole
// compilation; no partial registry is returned.
func Compile(r io.Reader, opts ...CompileOption) (*Registry, error) {
	cfg := compileConfig{path: DefaultSourceName}
	for _, opt := range opts {
		opt(&cfg)
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.path, err)
	}

	c := &compiler{
		path:   cfg.path,
		logger: cfg.logger,
		names:  make(map[string]int),
		macros: make(map[string]*Macro),
	}
	if err := c.harvest(lines); err != nil {
		return nil, err
	}
	if err := c.compile(lines); err != nil {
		return nil, err
	}
	return newRegistry(c.macros), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

type compiler struct {
	path   string
	logger *slog.Logger

	// names maps each declared macro name to its header line.
	names  map[string]int
	macros map[string]*Macro
}

// open tracks the macro currently being compiled.
type open struct {
	name   string
	line   int
	instrs []Instruction
}

func (c *compiler) errorf(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Path: c.path, Line: line, Message: fmt.Sprintf(format, args...)}
}

// harvest is the first pass: it records every header name.
func (c *compiler) harvest(lines []string) error {
	for i, line := range lines {
		name, ok := HeaderName(Normalize(line))
		if !ok {
			continue
		}
		lineNo := i + 1
		if name == "" {
			return c.errorf(lineNo, "macro header has no name")
		}
		if prev, dup := c.names[name]; dup {
			return c.errorf(lineNo, "macro %q is already defined at line %d", name, prev)
		}
		c.names[name] = lineNo
	}
	return nil
}

// compile is the second pass: it compiles every macro body.
func (c *compiler) compile(lines []string) error {
	var cur *open
	for i, line := range lines {
		lineNo := i + 1
		words := Normalize(line)
		if len(words) == 0 {
			continue
		}

		if name, ok := HeaderName(words); ok {
			if cur != nil {
				return c.errorf(lineNo, "header %q found before the end of macro %q (line %d)", name, cur.name, cur.line)
			}
			cur = &open{name: name, line: lineNo}
			continue
		}

		if cur == nil {
			if words[0] == "end" {
				return c.errorf(lineNo, "'end' without a macro name; a macro must begin with a \"name:\" header")
			}
			return c.errorf(lineNo, "instruction %q is outside of any macro", words[0])
		}

		instrs, err := c.instruction(lineNo, words)
		if err != nil {
			return err
		}
		cur.instrs = append(cur.instrs, instrs...)

		if instrs[len(instrs)-1].Op == OpEnd {
			c.finish(cur)
			cur = nil
		}
	}

	if cur != nil {
		return c.errorf(cur.line, "macro %q has no 'end' instruction", cur.name)
	}
	return nil
}

func (c *compiler) finish(m *open) {
	c.macros[m.name] = &Macro{Name: m.name, Instructions: m.instrs}
	if c.logger == nil {
		return
	}
	body := make([]string, len(m.instrs))
	for i, in := range m.instrs {
		body[i] = in.String()
	}
	c.logger.Info("compiled macro",
		"name", m.name,
		"line", m.line,
		"instructions", len(m.instrs),
		"body", body,
	)
}

// instruction compiles one normalized line. hold lowers to three
// instructions; every other form yields exactly one. Words past the
// required arguments are ignored.
func (c *compiler) instruction(line int, words []string) ([]Instruction, error) {
	switch words[0] {
	case "move":
		in, err := c.move(line, words[1:])
		if err != nil {
			return nil, err
		}
		return []Instruction{in}, nil

	case "press", "release":
		in, _, err := c.target(line, words[0], words[1:])
		if err != nil {
			return nil, err
		}
		if words[0] == "release" {
			in = in.released()
		}
		return []Instruction{in}, nil

	case "hold":
		in, n, err := c.target(line, "hold", words[1:])
		if err != nil {
			return nil, err
		}
		rest := words[1+n:]
		if len(rest) == 0 {
			return nil, c.errorf(line, "missing duration in 'hold' instruction")
		}
		ms, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return nil, c.errorf(line, "invalid duration %q in 'hold' instruction", rest[0])
		}
		return []Instruction{in, Wait(ms), in.released()}, nil

	case "wait":
		if len(words) < 2 {
			return nil, c.errorf(line, "missing duration in 'wait' instruction")
		}
		ms, err := strconv.ParseUint(words[1], 10, 64)
		if err != nil {
			return nil, c.errorf(line, "invalid duration %q in 'wait' instruction", words[1])
		}
		return []Instruction{Wait(ms)}, nil

	case "type":
		return []Instruction{Type(strings.Join(words[1:], " "))}, nil

	case "end":
		return []Instruction{End()}, nil
	}

	// A line that is exactly a known macro name invokes it.
	name := strings.Join(words, " ")
	if _, ok := c.names[name]; ok {
		return []Instruction{Call(name)}, nil
	}
	return nil, c.errorf(line, "invalid instruction %q", name)
}

func (c *compiler) move(line int, args []string) (Instruction, error) {
	if len(args) == 0 {
		return Instruction{}, c.errorf(line, "missing direction in 'move' instruction")
	}
	dir, ok := ParseDirection(args[0])
	if !ok {
		return Instruction{}, c.errorf(line, "invalid mouse move direction %q in 'move' instruction", args[0])
	}
	if len(args) < 2 {
		return Instruction{}, c.errorf(line, "missing distance in 'move' instruction")
	}
	dist, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return Instruction{}, c.errorf(line, "invalid distance %q in 'move' instruction", args[1])
	}
	return Move(dir, int(dist)), nil
}

// target parses the key or mouse button of a press, release or hold.
// It returns the press instruction and the number of words consumed.
func (c *compiler) target(line int, verb string, args []string) (Instruction, int, error) {
	if len(args) == 0 {
		return Instruction{}, 0, c.errorf(line, "missing key in '%s' instruction", verb)
	}

	if args[0] == "mouse" {
		if len(args) < 2 {
			return Instruction{}, 0, c.errorf(line, "missing mouse button in '%s' instruction", verb)
		}
		b, ok := mouse.ParseButton(args[1])
		if !ok {
			return Instruction{}, 0, c.errorf(line, "invalid mouse button %q in '%s' instruction", args[1], verb)
		}
		return ButtonPress(b), 2, nil
	}

	code, ok := key.Lookup(args[0])
	if !ok {
		err := c.errorf(line, "invalid key name %q in '%s' instruction", args[0], verb)
		switch lower := strings.ToLower(args[0]); {
		case mouse.IsButtonName(args[0]):
			err.Hint = fmt.Sprintf("did you mean '%s mouse %s'?", verb, args[0])
		case len(args[0]) == 1 && lower != args[0] && key.IsLiteral(rune(lower[0])):
			err.Hint = fmt.Sprintf("letter keys are lowercase; press shift with '%s'", lower)
		}
		return Instruction{}, 0, err
	}
	return KeyPress(code), 1, nil
}
