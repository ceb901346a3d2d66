// Package trigger turns incoming chat messages into macro playbacks.
//
// A Dispatcher evaluates one Message at a time. Text starting with the
// command prefix is a control command:
//
//	!start    enable playback
//	!stop     disable playback
//	!reload   recompile the macro source
//	!actions  list macro names
//	!stats    show usage counters
//	!kill     shut macroplay down
//	!help     list commands
//
// Any other text is matched exactly against the macro names of the
// current registry and, while playback is enabled, plays the macro.
//
// Messages reach the Dispatcher through a source: LineSource reads one
// message per line from a stream, and Webhook accepts JSON messages
// over HTTP.
package trigger
