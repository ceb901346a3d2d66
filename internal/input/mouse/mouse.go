package mouse

import "strings"

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ParseButton returns the button for a name as written after "mouse" in a
// macro source.
func ParseButton(name string) (Button, bool) {
	switch strings.ToLower(name) {
	case "left":
		return ButtonLeft, true
	case "middle":
		return ButtonMiddle, true
	case "right":
		return ButtonRight, true
	}
	return ButtonNone, false
}

// IsButtonName reports whether name is one of the button names. The macro
// compiler uses it to suggest "mouse <button>" when a key name is unknown.
func IsButtonName(name string) bool {
	_, ok := ParseButton(name)
	return ok
}
