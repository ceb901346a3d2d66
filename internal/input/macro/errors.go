package macro

import (
	"errors"
	"fmt"
)

// Errors returned by compilation and playback.
var (
	// ErrSyntax matches every *SyntaxError via errors.Is.
	ErrSyntax = errors.New("macro syntax error")

	// ErrUnknownMacro indicates a name is not in the registry.
	ErrUnknownMacro = errors.New("unknown macro")

	// ErrMissingTerminator indicates playback ran past the last instruction
	// without reaching end.
	ErrMissingTerminator = errors.New("macro has no end instruction")

	// ErrCallDepthExceeded indicates nested calls went deeper than the
	// configured limit.
	ErrCallDepthExceeded = errors.New("macro call depth exceeded")

	// ErrAlreadyPlaying indicates a playback was started on a busy Player.
	ErrAlreadyPlaying = errors.New("already playing a macro")

	// ErrInvalidInstruction indicates an instruction with an unknown Op.
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// SyntaxError describes malformed macro source. It always carries the
// 1-based line number of the offending line.
type SyntaxError struct {
	// Path names the source (a file path, or "<source>").
	Path string
	// Line is the 1-based line number.
	Line int
	// Message describes the error.
	Message string
	// Hint is an optional suggestion for the author.
	Hint string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("syntax error in %s at line %d: %s", e.Path, e.Line, e.Message)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// InjectionError wraps a failure reported by the injection sink.
type InjectionError struct {
	// Op names the primitive that failed, e.g. "key down".
	Op string
	// Err is the sink's error.
	Err error
}

// Error implements the error interface.
func (e *InjectionError) Error() string {
	return fmt.Sprintf("inject %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *InjectionError) Unwrap() error {
	return e.Err
}
