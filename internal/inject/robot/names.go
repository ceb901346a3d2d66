package robot

import (
	"strings"

	"github.com/dshills/macroplay/internal/input/key"
	"github.com/dshills/macroplay/internal/input/mouse"
)

// keyNames maps special keys to robotgo key names.
var keyNames = map[key.Key]string{
	key.KeyEscape:    "esc",
	key.KeyEnter:     "enter",
	key.KeyTab:       "tab",
	key.KeyBackspace: "backspace",
	key.KeyDelete:    "delete",
	key.KeyInsert:    "insert",
	key.KeyHome:      "home",
	key.KeyEnd:       "end",
	key.KeyPageUp:    "pageup",
	key.KeyPageDown:  "pagedown",
	key.KeyUp:        "up",
	key.KeyDown:      "down",
	key.KeyLeft:      "left",
	key.KeyRight:     "right",
	key.KeySpace:     "space",
	key.KeyCapsLock:  "capslock",
	key.KeyAlt:       "alt",
	key.KeyControl:   "ctrl",
	key.KeyShift:     "shift",
	key.KeyMeta:      "cmd",
	key.KeyOption:    "alt",
}

// KeyName returns the robotgo name of c.
func KeyName(c key.Code) (string, bool) {
	if c.IsRune() {
		if !key.IsLiteral(c.Rune) {
			return "", false
		}
		return string(c.Rune), true
	}
	if c.Key.IsFunctionKey() {
		return strings.ToLower(c.Key.String()), true
	}
	name, ok := keyNames[c.Key]
	return name, ok
}

// ButtonName returns the robotgo name of b.
func ButtonName(b mouse.Button) (string, bool) {
	switch b {
	case mouse.ButtonLeft, mouse.ButtonMiddle, mouse.ButtonRight:
		return b.String(), true
	}
	return "", false
}
