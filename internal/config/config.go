package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/macroplay/internal/config/loader"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "macroplay.toml"

// EnvSource names environment overrides in parse errors.
const EnvSource = "<environment>"

// Sink kinds.
const (
	SinkRobot = "robot"
	SinkLog   = "log"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete macroplay configuration.
type Config struct {
	Actions  ActionsConfig  `toml:"actions"`
	Playback PlaybackConfig `toml:"playback"`
	Trigger  TriggerConfig  `toml:"trigger"`
	Log      LogConfig      `toml:"log"`

	// Source is the config file that was read, empty if none.
	Source string `toml:"-"`
}

// ActionsConfig configures the macro source.
type ActionsConfig struct {
	// Path is the macro source file.
	Path string `toml:"path"`
	// Watch reloads the source when it changes on disk.
	Watch bool `toml:"watch"`
	// DebounceMS coalesces bursts of file events.
	DebounceMS int `toml:"debounce_ms"`
}

// PlaybackConfig configures macro playback.
type PlaybackConfig struct {
	// Enabled is the initial state of the playback flag.
	Enabled bool `toml:"enabled"`
	// MaxCallDepth limits nested macro calls; 0 means unlimited.
	MaxCallDepth int `toml:"max_call_depth"`
	// Sink selects the injection backend: "robot" or "log".
	Sink string `toml:"sink"`
}

// TriggerConfig configures where messages come from.
type TriggerConfig struct {
	// Prefix starts a control command.
	Prefix string `toml:"prefix"`
	// Stdin reads one message per line from standard input.
	Stdin   bool          `toml:"stdin"`
	Webhook WebhookConfig `toml:"webhook"`
}

// WebhookConfig configures the HTTP message endpoint.
type WebhookConfig struct {
	// Listen is the listen address; empty disables the webhook.
	Listen string `toml:"listen"`
	// ContentPath is the gjson path of the message text.
	ContentPath string `toml:"content_path"`
	// AuthorPath is the gjson path of the message author.
	AuthorPath string `toml:"author_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File receives log output instead of stderr when set.
	File string `toml:"file"`
	// Journal also sends records to the systemd journal.
	Journal bool `toml:"journal"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Actions: ActionsConfig{
			Path:       "actions.txt",
			Watch:      true,
			DebounceMS: 200,
		},
		Playback: PlaybackConfig{
			Enabled: false,
			Sink:    SinkRobot,
		},
		Trigger: TriggerConfig{
			Prefix: "!",
			Stdin:  true,
			Webhook: WebhookConfig{
				ContentPath: "content",
				AuthorPath:  "author.username",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env loader.Loader
}

// WithFS sets the file system the config file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnv sets the environment loader. A nil loader disables
// environment overrides.
func WithEnv(env loader.Loader) Option {
	return func(o *loadOptions) {
		o.env = env
	}
}

// Load decodes the config file at path over the defaults, then the
// environment overrides over the result. An empty path or a
// missing file yields the defaults. Load does not validate.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), env: loader.NewEnvLoader()}
	for _, opt := range opts {
		opt(&o)
	}

	fileMap, err := loader.NewTOMLLoaderWithFS(o.fs, path).Load()
	if err != nil {
		return nil, err
	}

	var envMap map[string]any
	if o.env != nil {
		if envMap, err = o.env.Load(); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	cfg := Default()
	if fileMap != nil {
		cfg.Source = path
		if err := decode(fileMap, cfg, path); err != nil {
			return nil, err
		}
	}
	if len(envMap) > 0 {
		if err := decode(envMap, cfg, EnvSource); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// decode strictly decodes one source map onto cfg. Keys absent from the
// map keep their current values.
func decode(src map[string]any, cfg *Config, source string) error {
	data, err := toml.Marshal(src)
	if err != nil {
		return fmt.Errorf("encoding %s config: %w", source, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := loader.NewParseError(source, err)
		// Positions refer to the re-encoded map, not the source.
		pe.Line, pe.Column = 0, 0
		return pe
	}
	return nil
}

// DefaultPath returns DefaultFileName in the working directory if it
// exists, otherwise the per-user config file path.
func DefaultPath() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "macroplay", DefaultFileName)
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if strings.TrimSpace(c.Actions.Path) == "" {
		fail("actions.path", "must not be empty", c.Actions.Path)
	}
	if c.Actions.DebounceMS < 0 {
		fail("actions.debounce_ms", "must not be negative", c.Actions.DebounceMS)
	}
	if c.Playback.MaxCallDepth < 0 {
		fail("playback.max_call_depth", "must not be negative", c.Playback.MaxCallDepth)
	}
	if !slices.Contains([]string{SinkRobot, SinkLog}, c.Playback.Sink) {
		fail("playback.sink", `must be "robot" or "log"`, c.Playback.Sink)
	}
	if c.Trigger.Prefix == "" || strings.ContainsAny(c.Trigger.Prefix, " \t") {
		fail("trigger.prefix", "must be non-empty without whitespace", c.Trigger.Prefix)
	}
	if c.Trigger.Webhook.ContentPath == "" {
		fail("trigger.webhook.content_path", "must not be empty", c.Trigger.Webhook.ContentPath)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		fail("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	if !slices.Contains([]string{FormatText, FormatJSON}, c.Log.Format) {
		fail("log.format", `must be "text" or "json"`, c.Log.Format)
	}

	return errors.Join(errs...)
}

// ParseLogLevel parses a level name case-insensitively. An empty name
// is info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
