// Package macro compiles macro sources and plays the compiled macros.
//
// # Source Format
//
// A source is plain text. Everything from "//" to the end of a line is a
// comment. A macro starts with a header, a line holding a single word
// ending in a colon, and ends with "end":
//
//	greet:
//	    type hello
//	    wait 100
//	end
//
// Instructions:
//
//	move <up|down|left|right> <distance>
//	press <key> | press mouse <left|middle|right>
//	release <key> | release mouse <button>
//	hold <key> <ms> | hold mouse <button> <ms>
//	wait <ms>
//	type <text...>
//	<macro name>
//
// A line that is exactly the name of another macro in the same source
// plays that macro. Names are collected before bodies are compiled, so
// a macro may call one defined later in the file.
//
// # Compilation
//
// Compile turns a source into an immutable Registry. It fails on the
// first error with a *SyntaxError carrying the line number. hold is
// lowered to a press, a wait and a release.
//
// # Playback
//
// A Player walks a macro's instructions in order and drives a Sink.
// Calls are resolved by name at playback time against the Registry the
// playback started with. Waits block the player.
//
// # Reloading
//
// Store holds the current Registry. A reload compiles a new registry and
// swaps it in; a playback already running keeps the registry it started
// with.
package macro
