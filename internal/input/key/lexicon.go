package key

import (
	"slices"
	"strings"
)

// keyNameMap maps key names (lowercase) to Key values.
var keyNameMap = map[string]Key{
	"alt":       KeyAlt,
	"backspace": KeyBackspace,
	"back":      KeyBackspace,
	"caps_lock": KeyCapsLock,
	"capslock":  KeyCapsLock,
	"control":   KeyControl,
	"ctrl":      KeyControl,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"insert":    KeyInsert,
	"ins":       KeyInsert,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"end":       KeyEnd,
	"home":      KeyHome,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"f1":        KeyF1,
	"f2":        KeyF2,
	"f3":        KeyF3,
	"f4":        KeyF4,
	"f5":        KeyF5,
	"f6":        KeyF6,
	"f7":        KeyF7,
	"f8":        KeyF8,
	"f9":        KeyF9,
	"f10":       KeyF10,
	"f11":       KeyF11,
	"f12":       KeyF12,
	"meta":      KeyMeta,
	"win":       KeyMeta,
	"windows":   KeyMeta,
	"command":   KeyMeta,
	"super":     KeyMeta,
	"option":    KeyOption,
	"page_down": KeyPageDown,
	"pg_down":   KeyPageDown,
	"pgdown":    KeyPageDown,
	"page_up":   KeyPageUp,
	"pg_up":     KeyPageUp,
	"pgup":      KeyPageUp,
	"return":    KeyEnter,
	"enter":     KeyEnter,
	"shift":     KeyShift,
	"space":     KeySpace,
	"tab":       KeyTab,
}

// punctuation lists the non-alphanumeric characters accepted as literal keys.
const punctuation = "`-=[]\\;',./"

// KeyFromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k
	}
	return KeyNone
}

// Lookup resolves a key name as written in a macro source.
//
// Named keys are tried first, so "end" is the End key and "left" is the
// left arrow. Otherwise a single lowercase ASCII letter, digit or accepted
// punctuation character is used verbatim as a character key. Capitals are
// not keys; a macro holds shift instead.
func Lookup(name string) (Code, bool) {
	if k := KeyFromName(name); k != KeyNone {
		return Special(k), true
	}
	if len(name) != 1 {
		return Code{}, false
	}
	r := rune(name[0])
	if IsLiteral(r) {
		return Char(r), true
	}
	return Code{}, false
}

// IsLiteral reports whether r may be used on its own as a character key.
func IsLiteral(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(punctuation, r)
}

// Names returns every accepted key name alias, sorted.
func Names() []string {
	names := make([]string, 0, len(keyNameMap))
	for name := range keyNameMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
