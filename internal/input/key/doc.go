// Package key provides the key lexicon used by the macro compiler.
//
// This package defines the fundamental types for naming keyboard keys:
//
//   - Key: Identifies a keyboard key (special keys, modifiers, function keys, or runes)
//   - Code: A Key plus the character for rune keys; the abstract key id
//     handed to injection sinks
//
// # Key Names
//
// Keys are written by name in macro sources:
//
//   - Modifiers: "alt", "ctrl"/"control", "shift", "meta"/"win"/"command"/"super", "option"
//   - Navigation: "up", "down", "left", "right", "home", "end", "pgup", "pgdown"
//   - Editing: "tab", "space", "enter"/"return", "esc", "back", "del"
//   - Function keys: "f1" through "f12"
//   - Characters: any single lowercase letter, digit, or one of `-=[]\;',./
//
// Named keys are matched case-insensitively. Single characters are used
// verbatim; capital letters are rejected.
package key
