package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
)

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService reads through viper so env vars and bound flags override
// the file, and writes plain TOML
type configService struct {
	v        *viper.Viper
	bus      eventbus.EventBus
	filePath string
	dirs     []string
}

// NewViper returns a viper instance carrying every default and the
// TYPEAHEAD_ env mapping. Bind flags to it before loading.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("debounce_ms", d.DebounceMS)
	v.SetDefault("wrap_mode", d.WrapMode)
	v.SetDefault("namespace", d.Namespace)
	v.SetDefault("redirect_url", d.RedirectURL)
	v.SetDefault("backend.kind", d.Backend.Kind)
	v.SetDefault("backend.words_file", d.Backend.WordsFile)
	v.SetDefault("backend.latency_ms", d.Backend.LatencyMS)
	v.SetDefault("backend.max_results", d.Backend.MaxResults)
	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewConfigService creates a config service searching the working
// directory and then the user config directory
func NewConfigService(v *viper.Viper) ConfigService {
	if v == nil {
		v = NewViper()
	}
	return &configService{
		v:        v,
		filePath: DefaultPath(),
		dirs:     []string{".", Dir()},
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(v *viper.Viper, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(v).(*configService)
	cs.bus = bus
	return cs
}

// Load reads typeahead.toml from the search path. A missing file yields
// the defaults with env and flag overrides applied.
func (cs *configService) Load() (*Config, error) {
	cs.v.SetConfigName(AppName)
	cs.v.SetConfigType("toml")
	for _, dir := range cs.dirs {
		cs.v.AddConfigPath(dir)
	}

	if err := cs.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return cs.decode()
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cs.v.SetConfigFile(path)
	cs.v.SetConfigType("toml")
	if err := cs.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return cs.decode()
}

func (cs *configService) decode() (*Config, error) {
	var cfg Config
	if err := cs.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{Path: cs.v.ConfigFileUsed()})
	}
	return &cfg, nil
}

// Save writes the configuration to the default path
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: path})
	}
	return nil
}
