package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"typeahead/internal/navigator"
	"typeahead/internal/search"
	"typeahead/internal/selection"
	"typeahead/internal/session"
)

// AppName names the config directory, file and env prefix
const AppName = "typeahead"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	DebounceMS  int           `toml:"debounce_ms" mapstructure:"debounce_ms"`
	WrapMode    string        `toml:"wrap_mode" mapstructure:"wrap_mode"`
	Namespace   string        `toml:"namespace" mapstructure:"namespace"`
	RedirectURL string        `toml:"redirect_url" mapstructure:"redirect_url"`
	Backend     BackendConfig `toml:"backend" mapstructure:"backend"`
	Store       StoreConfig   `toml:"store" mapstructure:"store"`
	Cache       CacheConfig   `toml:"cache" mapstructure:"cache"`
	Log         LogConfig     `toml:"log" mapstructure:"log"`
}

// BackendConfig selects the search backend
type BackendConfig struct {
	Kind       string `toml:"kind" mapstructure:"kind"`
	WordsFile  string `toml:"words_file" mapstructure:"words_file"`
	LatencyMS  int    `toml:"latency_ms" mapstructure:"latency_ms"`
	MaxResults int    `toml:"max_results" mapstructure:"max_results"`
}

// StoreConfig selects where the last query is persisted
type StoreConfig struct {
	Kind string `toml:"kind" mapstructure:"kind"`
	Path string `toml:"path" mapstructure:"path"`
}

// CacheConfig bounds the lookup cache. Size 0 means unbounded.
type CacheConfig struct {
	Size int `toml:"size" mapstructure:"size"`
}

// LogConfig controls the structured log file
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

// Dir returns the per-user config directory, falling back to ~/.config
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, AppName)
}

// DefaultPath is where Save writes and Load looks last
func DefaultPath() string {
	return filepath.Join(Dir(), AppName+".toml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DebounceMS:  300,
		WrapMode:    string(navigator.WrapInputSlot),
		Namespace:   "HomePage",
		RedirectURL: selection.DefaultRedirectURL,
		Backend: BackendConfig{
			Kind:       search.KindWordList,
			MaxResults: 10,
		},
		Store: StoreConfig{
			Kind: session.KindFile,
			Path: filepath.Join(Dir(), "session.toml"),
		},
		Cache: CacheConfig{
			Size: 256,
		},
		Log: LogConfig{
			Level: "info",
			File:  AppName + ".log",
		},
	}
}

// Debounce returns the debounce window
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Wrap returns the parsed wrap mode. Call Validate first.
func (c *Config) Wrap() navigator.WrapMode {
	mode, err := navigator.ParseWrapMode(c.WrapMode)
	if err != nil {
		return navigator.WrapInputSlot
	}
	return mode
}

// BackendOptions converts the backend section for search.Open
func (c *Config) BackendOptions() search.Options {
	return search.Options{
		Kind:       c.Backend.Kind,
		WordsFile:  c.Backend.WordsFile,
		Latency:    time.Duration(c.Backend.LatencyMS) * time.Millisecond,
		MaxResults: c.Backend.MaxResults,
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms must not be negative, got %d", ErrInvalid, c.DebounceMS)
	}
	if _, err := navigator.ParseWrapMode(c.WrapMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Namespace == "" {
		return fmt.Errorf("%w: namespace must not be empty", ErrInvalid)
	}
	if u, err := url.Parse(c.RedirectURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: redirect_url %q is not an absolute URL", ErrInvalid, c.RedirectURL)
	}

	switch c.Backend.Kind {
	case search.KindWordList, search.KindStatic:
	default:
		return fmt.Errorf("%w: unknown backend.kind %q", ErrInvalid, c.Backend.Kind)
	}
	if c.Backend.LatencyMS < 0 {
		return fmt.Errorf("%w: backend.latency_ms must not be negative", ErrInvalid)
	}
	if c.Backend.MaxResults < 0 {
		return fmt.Errorf("%w: backend.max_results must not be negative", ErrInvalid)
	}

	switch c.Store.Kind {
	case session.KindMemory:
	case session.KindFile, session.KindSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for a %s store", ErrInvalid, c.Store.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown store.kind %q", ErrInvalid, c.Store.Kind)
	}

	if c.Cache.Size < 0 {
		return fmt.Errorf("%w: cache.size must not be negative", ErrInvalid)
	}
	return nil
}
