// Package mouse names the mouse buttons a macro can press and release.
//
// Buttons are written after the word "mouse" in macro sources:
//
//	press mouse left
//	hold mouse right 200
package mouse
