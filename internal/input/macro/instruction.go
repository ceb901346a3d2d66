package macro

import (
	"fmt"
	"strconv"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// Op identifies the kind of an Instruction.
type Op uint8

const (
	// OpNone is the zero Op. It never appears in a compiled macro.
	OpNone Op = iota
	// OpMove moves the cursor relative to its current position.
	OpMove
	// OpKey presses or releases a key.
	OpKey
	// OpButton presses or releases a mouse button.
	OpButton
	// OpWait suspends playback.
	OpWait
	// OpType types literal text.
	OpType
	// OpCall plays another macro to completion.
	OpCall
	// OpEnd terminates a macro.
	OpEnd
)

// String returns the opcode name.
func (op Op) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpKey:
		return "key"
	case OpButton:
		return "button"
	case OpWait:
		return "wait"
	case OpType:
		return "type"
	case OpCall:
		return "call"
	case OpEnd:
		return "end"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

// Direction is the direction of a cursor move.
type Direction uint8

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

// ParseDirection parses a direction as written in a move instruction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Delta converts a distance in this direction to a relative (dx, dy).
// Up and left are negative.
func (d Direction) Delta(distance int) (dx, dy int) {
	switch d {
	case Up:
		return 0, -distance
	case Down:
		return 0, distance
	case Left:
		return -distance, 0
	case Right:
		return distance, 0
	}
	return 0, 0
}

// Instruction is one step of a compiled macro. Op selects which of the
// remaining fields are meaningful. Instructions are comparable with ==.
type Instruction struct {
	Op Op

	// OpMove
	Direction Direction
	Distance  int

	// OpKey
	Key key.Code

	// OpButton
	Button mouse.Button

	// Release is set on the release half of OpKey and OpButton.
	Release bool

	// OpWait, in milliseconds.
	Millis uint64

	// OpType
	Text string

	// OpCall
	Name string
}

// Move returns a cursor move instruction.
func Move(d Direction, distance int) Instruction {
	return Instruction{Op: OpMove, Direction: d, Distance: distance}
}

// KeyPress returns a key-down instruction.
func KeyPress(c key.Code) Instruction {
	return Instruction{Op: OpKey, Key: c}
}

// KeyRelease returns a key-up instruction.
func KeyRelease(c key.Code) Instruction {
	return Instruction{Op: OpKey, Key: c, Release: true}
}

// ButtonPress returns a mouse button-down instruction.
func ButtonPress(b mouse.Button) Instruction {
	return Instruction{Op: OpButton, Button: b}
}

// ButtonRelease returns a mouse button-up instruction.
func ButtonRelease(b mouse.Button) Instruction {
	return Instruction{Op: OpButton, Button: b, Release: true}
}

// Wait returns a pause of ms milliseconds.
func Wait(ms uint64) Instruction {
	return Instruction{Op: OpWait, Millis: ms}
}

// Type returns an instruction that types text.
func Type(text string) Instruction {
	return Instruction{Op: OpType, Text: text}
}

// Call returns an instruction that plays the named macro.
func Call(name string) Instruction {
	return Instruction{Op: OpCall, Name: name}
}

// End returns the terminator.
func End() Instruction {
	return Instruction{Op: OpEnd}
}

// released returns the release counterpart of a press instruction.
func (in Instruction) released() Instruction {
	in.Release = true
	return in
}

// String formats the instruction close to how it is written in a source.
func (in Instruction) String() string {
	verb := "press"
	if in.Release {
		verb = "release"
	}
	switch in.Op {
	case OpMove:
		return "move " + in.Direction.String() + " " + strconv.Itoa(in.Distance)
	case OpKey:
		return verb + " " + in.Key.String()
	case OpButton:
		return verb + " mouse " + in.Button.String()
	case OpWait:
		return "wait " + strconv.FormatUint(in.Millis, 10)
	case OpType:
		return "type " + in.Text
	case OpCall:
		return "call " + in.Name
	case OpEnd:
		return "end"
	default:
		return in.Op.String()
	}
}
