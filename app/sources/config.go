package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is one source's configuration, loaded from <sources-dir>/<name>.yml.
// Name is derived from the filename.
type Config struct {
	Name       string
	Settings   ConfigSettings `yaml:"settings"`
	Subreddits []string       `yaml:"subreddits"`
	Timeframes []string       `yaml:"timeframes"`
}

type ConfigSettings struct {
	Enabled    bool `yaml:"enabled"`
	MinScore   int  `yaml:"min_score"`
	MaxResults int  `yaml:"max_results"`
	Timeout    int  `yaml:"timeout"` // seconds
}

type ConfigCache struct {
	sourcesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(sourcesDir string) *ConfigCache {
	return &ConfigCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Config),
	}
}

// Run loads every *.yml file in the sources directory. A missing directory is
// not an error: all sources then run on their built-in defaults.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		sourceName := fileName[:len(fileName)-4]

		config, err := cc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", sourceName, "enabled", config.Settings.Enabled, "min_score", config.Settings.MinScore)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(sourceName string) (*Config, error) {
	configFile := filepath.Join(cc.sourcesDir, sourceName+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config := defaultConfig(sourceName)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.Name = sourceName

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[sourceName] = config

	return config, nil
}

// GetConfig returns the cached config for a source, or defaults when no file
// was provided for it.
func (cc *ConfigCache) GetConfig(sourceName string) *Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	if config, ok := cc.cache[sourceName]; ok {
		return config
	}
	return defaultConfig(sourceName)
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func defaultConfig(sourceName string) *Config {
	config := &Config{
		Name: sourceName,
		Settings: ConfigSettings{
			Enabled:    true,
			MinScore:   100,
			MaxResults: 25,
			Timeout:    30,
		},
	}

	if sourceName == TypeReddit {
		config.Subreddits = []string{"all", "popular", "news", "worldnews"}
		config.Timeframes = []string{"day", "week", "month", "year"}
	}

	return config
}
