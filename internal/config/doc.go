// Package config provides the configuration for macroplay.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by the app)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← MACROPLAY_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← macroplay.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing config file is not an error; the defaults apply.
//
// # Sub-packages
//
//   - loader: TOML file and environment variable loading
//   - watcher: File watching for reload on change
//
// # Example File
//
//	[actions]
//	path = "actions.txt"
//	watch = true
//
//	[playback]
//	enabled = false
//	sink = "robot"
//
//	[trigger]
//	prefix = "!"
//
//	[trigger.webhook]
//	listen = "127.0.0.1:8080"
//	content_path = "content"
//	author_path = "author.username"
//
//	[log]
//	level = "info"
//	format = "text"
package config
