// Package inject provides input injection sinks for macro playback.
//
// A sink turns the player's primitives (relative cursor moves, key and
// button transitions, typed text) into effects. LogSink only records
// what would be injected and is used for dry runs. The robot subpackage
// injects real OS input.
package inject
