package key

import (
	"fmt"
)

// Key represents a keyboard key.
// For character keys, use KeyRune and set the Rune field in Code.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Other special keys
	KeySpace
	KeyCapsLock

	// Modifier keys. These are ordinary keys to a macro: they are pressed
	// and released explicitly.
	KeyAlt
	KeyControl
	KeyShift
	KeyMeta
	KeyOption

	// KeyRune is used for character keys (letters, numbers, punctuation).
	// The actual character is stored in Code.Rune.
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
	case KeyInsert:
		return "Insert"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyPageUp:
		return "PageUp"
	case KeyPageDown:
		return "PageDown"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeySpace:
		return "Space"
	case KeyCapsLock:
		return "CapsLock"
	case KeyAlt:
		return "Alt"
	case KeyControl:
		return "Control"
	case KeyShift:
		return "Shift"
	case KeyMeta:
		return "Meta"
	case KeyOption:
		return "Option"
	case KeyRune:
		return "Rune"
	}
	if k.IsFunctionKey() {
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsSpecial returns true if this is a special (non-character) key.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsModifier returns true for Alt, Control, Shift, Meta and Option.
func (k Key) IsModifier() bool {
	return k >= KeyAlt && k <= KeyOption
}

// Code identifies one key on the keyboard. It is the abstract key id
// carried by compiled key instructions and handed to injection sinks.
type Code struct {
	// Key identifies the key.
	Key Key

	// Rune is the character for KeyRune codes.
	Rune rune
}

// Special returns the Code for a non-character key.
func Special(k Key) Code {
	return Code{Key: k}
}

// Char returns the Code for a character key.
func Char(r rune) Code {
	return Code{Key: KeyRune, Rune: r}
}

// IsRune returns true if this is a character key.
func (c Code) IsRune() bool {
	return c.Key == KeyRune && c.Rune != 0
}

// String returns the key name, or the character itself for character keys.
func (c Code) String() string {
	if c.Key == KeyRune {
		return string(c.Rune)
	}
	return c.Key.String()
}
