package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "MACROPLAY_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	lookup  func(string) (string, bool)
	mapping map[string]string // Env var -> config path
}

// typedPaths are the config paths whose values are booleans or integers.
// Every other path takes the variable's text verbatim.
var typedPaths = map[string]bool{
	"actions.watch":           true,
	"actions.debounce_ms":     true,
	"playback.enabled":        true,
	"playback.max_call_depth": true,
	"trigger.stdin":           true,
	"log.journal":             true,
}

// NewEnvLoader creates a loader for the default MACROPLAY_ variables.
func NewEnvLoader() *EnvLoader {
	return NewEnvLoaderWithMapping(defaultEnvMapping(DefaultEnvPrefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		lookup:  os.LookupEnv,
		mapping: mapping,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping(prefix string) map[string]string {
	paths := map[string]string{
		"ACTIONS_PATH":         "actions.path",
		"ACTIONS_WATCH":        "actions.watch",
		"ACTIONS_DEBOUNCE_MS":  "actions.debounce_ms",
		"PLAYBACK_ENABLED":     "playback.enabled",
		"PLAYBACK_MAX_DEPTH":   "playback.max_call_depth",
		"PLAYBACK_SINK":        "playback.sink",
		"TRIGGER_PREFIX":       "trigger.prefix",
		"TRIGGER_STDIN":        "trigger.stdin",
		"WEBHOOK_LISTEN":       "trigger.webhook.listen",
		"WEBHOOK_CONTENT_PATH": "trigger.webhook.content_path",
		"WEBHOOK_AUTHOR_PATH":  "trigger.webhook.author_path",
		"LOG_LEVEL":            "log.level",
		"LOG_FORMAT":           "log.format",
		"LOG_FILE":             "log.file",
		"LOG_JOURNAL":          "log.journal",
	}
	mapping := make(map[string]string, len(paths))
	for env, path := range paths {
		mapping[prefix+env] = path
	}
	return mapping
}

// Mapping returns the environment variable to config path mapping.
func (l *EnvLoader) Mapping() map[string]string {
	return l.mapping
}

// Load reads the mapped environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		val, ok := l.lookup(env)
		if !ok {
			continue
		}
		if typedPaths[path] {
			setByPath(config, path, parseValue(val))
		} else {
			setByPath(config, path, val)
		}
	}
	return config, nil
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	// Navigate/create intermediate maps
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
