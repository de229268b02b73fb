// Package config resolves server settings from defaults, an optional YAML
// file, environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
)

const (
	// AppName is the configuration directory name.
	AppName = "clickup-mcp"

	// ConfigFile is the configuration filename inside the directory.
	ConfigFile = "config.yaml"
)

// Defaults.
const (
	DefaultCharacterLimit = 100000
	DefaultMaxLimit       = 100
	DefaultDefaultLimit   = 20
	DefaultLogLevel       = "info"
	DefaultTimeout        = 30 * time.Second
)

// Environment variable names.
const (
	EnvAPIToken       = "CLICKUP_API_TOKEN"
	EnvTeamID         = "CLICKUP_TEAM_ID"
	EnvBaseURL        = "CLICKUP_API_URL"
	EnvLogLevel       = "CLICKUP_LOG_LEVEL"
	EnvTimeout        = "CLICKUP_TIMEOUT"
	EnvCharacterLimit = "CHARACTER_LIMIT"
	EnvMaxLimit       = "MAX_LIMIT"
	EnvDefaultLimit   = "DEFAULT_LIMIT"
)

// Limits bounds tool responses.
type Limits struct {
	// CharacterLimit is the hard size budget of a tool response.
	CharacterLimit int `yaml:"character_limit" json:"character_limit"`
	// MaxLimit is the API page size, used for exhaustive walks and as the
	// cap on a client's requested limit.
	MaxLimit int `yaml:"max_limit" json:"max_limit"`
	// DefaultLimit is the page size when a client asks for none.
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
}

// Config holds everything the server needs at startup.
type Config struct {
	APIToken string        `yaml:"api_token"`
	TeamID   string        `yaml:"team_id"`
	BaseURL  string        `yaml:"base_url"`
	LogLevel string        `yaml:"log_level"`
	Timeout  time.Duration `yaml:"timeout"`
	Limits   `yaml:",inline"`

	// Path is the config file that was read, or "" if none existed.
	Path string `yaml:"-"`
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		BaseURL:  clickup.DefaultBaseURL,
		LogLevel: DefaultLogLevel,
		Timeout:  DefaultTimeout,
		Limits: Limits{
			CharacterLimit: DefaultCharacterLimit,
			MaxLimit:       DefaultMaxLimit,
			DefaultLimit:   DefaultDefaultLimit,
		},
	}
}

// DefaultPath returns the config file location.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, ConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(AppName, ConfigFile)
	}
	return filepath.Join(home, ".config", AppName, ConfigFile)
}

// LoadFile merges the YAML file at path into cfg. A missing file is not
// an error.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Path = path
	return nil
}

// ApplyEnv merges environment variables into cfg. Unset or empty
// variables leave the current value alone.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvAPIToken, &cfg.APIToken},
		{EnvTeamID, &cfg.TeamID},
		{EnvBaseURL, &cfg.BaseURL},
		{EnvLogLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvCharacterLimit, &cfg.CharacterLimit},
		{EnvMaxLimit, &cfg.MaxLimit},
		{EnvDefaultLimit, &cfg.DefaultLimit},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	if v := getenv(EnvTimeout); v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Flags holds the serve command-line flags.
type Flags struct {
	fs             *pflag.FlagSet
	ConfigPath     string
	TeamID         string
	BaseURL        string
	LogLevel       string
	CharacterLimit int
	MaxLimit       int
	DefaultLimit   int
}

// NewFlags creates the serve flag set.
func NewFlags(name string) *Flags {
	f := &Flags{fs: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	f.fs.StringVar(&f.ConfigPath, "config", "", "path to config.yaml (default "+DefaultPath()+")")
	f.fs.StringVar(&f.TeamID, "team-id", "", "ClickUp workspace (team) id searched when no list is given")
	f.fs.StringVar(&f.BaseURL, "api-url", "", "ClickUp API base URL")
	f.fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	f.fs.IntVar(&f.CharacterLimit, "character-limit", 0, "maximum characters per tool response")
	f.fs.IntVar(&f.MaxLimit, "max-limit", 0, "API page size and cap on requested limits")
	f.fs.IntVar(&f.DefaultLimit, "default-limit", 0, "page size when a client sets none")
	return f
}

// FlagSet exposes the underlying pflag set (usage output).
func (f *Flags) FlagSet() *pflag.FlagSet {
	return f.fs
}

// Parse parses args. pflag.ErrHelp is returned for -h/--help.
func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// Apply copies explicitly set flags into cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("team-id") {
		cfg.TeamID = f.TeamID
	}
	if f.fs.Changed("api-url") {
		cfg.BaseURL = f.BaseURL
	}
	if f.fs.Changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if f.fs.Changed("character-limit") {
		cfg.CharacterLimit = f.CharacterLimit
	}
	if f.fs.Changed("max-limit") {
		cfg.MaxLimit = f.MaxLimit
	}
	if f.fs.Changed("default-limit") {
		cfg.DefaultLimit = f.DefaultLimit
	}
}

// Load resolves the configuration for the serve command.
func Load(args []string, getenv func(string) string) (*Config, error) {
	flags := NewFlags("serve")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	path := flags.ConfigPath
	if path == "" {
		path = DefaultPath()
	}
	if err := LoadFile(&cfg, path); err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg, getenv); err != nil {
		return nil, err
	}
	flags.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.APIToken == "":
		return fmt.Errorf("%s is required", EnvAPIToken)
	case c.CharacterLimit <= 0:
		return fmt.Errorf("character limit must be positive, got %d", c.CharacterLimit)
	case c.MaxLimit <= 0:
		return fmt.Errorf("max limit must be positive, got %d", c.MaxLimit)
	case c.DefaultLimit <= 0:
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	case c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("default limit %d exceeds max limit %d", c.DefaultLimit, c.MaxLimit)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ClampLimit turns a client-requested limit into the effective page size.
func (l Limits) ClampLimit(requested int) int {
	switch {
	case requested <= 0:
		return l.DefaultLimit
	case requested > l.MaxLimit:
		return l.MaxLimit
	default:
		return requested
	}
}
