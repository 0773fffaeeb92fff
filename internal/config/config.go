// Package config loads tsclient settings from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Default values applied to fields a file leaves unset.
const (
	DefaultServerPath     = "tsserver"
	DefaultGracePeriod    = 5 * time.Second
	DefaultMaxMessageSize = 16 << 20
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultDebounce       = 250 * time.Millisecond
)

// DefaultWatchPatterns are the files whose changes trigger a project reload.
var DefaultWatchPatterns = []string{"**/tsconfig*.json", "**/jsconfig*.json", "**/package.json"}

// ServerConfig describes how to launch the server.
type ServerConfig struct {
	Path           string            `yaml:"path" toml:"path"`
	Args           []string          `yaml:"args" toml:"args"`
	Dir            string            `yaml:"dir" toml:"dir"`
	Env            map[string]string `yaml:"env" toml:"env"`
	GracePeriod    time.Duration     `yaml:"gracePeriod" toml:"gracePeriod"`
	MaxMessageSize int               `yaml:"maxMessageSize" toml:"maxMessageSize"`
}

// LogConfig sets logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// WatchConfig drives the project watcher.
type WatchConfig struct {
	Patterns []string      `yaml:"patterns" toml:"patterns"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Config is the whole settings file.
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Watch  WatchConfig  `yaml:"watch" toml:"watch"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path, decoding it as TOML for a .toml extension
// and YAML otherwise. Defaults fill unset fields, ~ is expanded in paths,
// and the result is validated.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// SearchPaths lists the files Find tries, in order, relative to dir.
func SearchPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ".tsclient.yaml"),
		filepath.Join(dir, ".tsclient.toml"),
		"~/.config/tsclient/config.yaml",
	}
}

// Find returns the first existing file of SearchPaths(dir), or "" if none
// exists.
func Find(dir string) (string, error) {
	for _, p := range SearchPaths(dir) {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		if _, err := os.Stat(expanded); err == nil {
			return expanded, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config: %w", err)
		}
	}
	return "", nil
}

// Resolve loads explicit when set. Otherwise it loads the first file Find
// locates from dir, falling back to Default.
func Resolve(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Path == "" {
		return errors.New("server.path required")
	}
	if c.Server.GracePeriod < 0 {
		return fmt.Errorf("server.gracePeriod must not be negative, got %s", c.Server.GracePeriod)
	}
	if c.Server.MaxMessageSize < 0 {
		return fmt.Errorf("server.maxMessageSize must not be negative, got %d", c.Server.MaxMessageSize)
	}
	for k := range c.Server.Env {
		if k == "" || strings.ContainsRune(k, '=') {
			return fmt.Errorf("server.env: invalid variable name %q", k)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	for _, p := range c.Watch.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("watch.patterns: invalid glob %q", p)
		}
	}
	return nil
}

// EnvList returns Server.Env as sorted KEY=VALUE entries.
func (c *Config) EnvList() []string {
	env := make([]string, 0, len(c.Server.Env))
	for k, v := range c.Server.Env {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env
}

func (c *Config) applyDefaults() {
	if c.Server.Path == "" {
		c.Server.Path = DefaultServerPath
	}
	if c.Server.GracePeriod == 0 {
		c.Server.GracePeriod = DefaultGracePeriod
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if len(c.Watch.Patterns) == 0 {
		c.Watch.Patterns = slices.Clone(DefaultWatchPatterns)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.Server.Path, err = homedir.Expand(c.Server.Path); err != nil {
		return fmt.Errorf("config: server.path: %w", err)
	}
	if c.Server.Dir, err = homedir.Expand(c.Server.Dir); err != nil {
		return fmt.Errorf("config: server.dir: %w", err)
	}
	return nil
}
