package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCache_LoadsYamlFiles(t *testing.T) {
	dir := t.TempDir()
	data := `settings:
  enabled: true
  min_score: 250
  max_results: 10
  timeout: 15
subreddits:
  - news
  - worldnews
timeframes:
  - day
  - week
`
	if err := os.WriteFile(filepath.Join(dir, "reddit.yml"), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cache.GetConfigCount() != 1 {
		t.Fatalf("Expected 1 config, got %d", cache.GetConfigCount())
	}

	config := cache.GetConfig("reddit")
	if config.Name != "reddit" {
		t.Errorf("Expected name 'reddit', got '%s'", config.Name)
	}
	if config.Settings.MinScore != 250 {
		t.Errorf("Expected min score 250, got %d", config.Settings.MinScore)
	}
	if len(config.Subreddits) != 2 {
		t.Errorf("Expected 2 subreddits, got %d", len(config.Subreddits))
	}
	if len(config.Timeframes) != 2 {
		t.Errorf("Expected 2 timeframes, got %d", len(config.Timeframes))
	}
}

func TestConfigCache_MissingDirIsNotAnError(t *testing.T) {
	cache := NewConfigCache("/nonexistent/path")
	if err := cache.Run(); err != nil {
		t.Errorf("Missing sources dir should not error, got %v", err)
	}
}

func TestConfigCache_DefaultsForUnknownSource(t *testing.T) {
	cache := NewConfigCache(t.TempDir())

	config := cache.GetConfig("hackernews")
	if !config.Settings.Enabled {
		t.Error("Default config should be enabled")
	}
	if config.Settings.MinScore != 100 {
		t.Errorf("Expected default min score 100, got %d", config.Settings.MinScore)
	}

	reddit := cache.GetConfig("reddit")
	if len(reddit.Subreddits) == 0 {
		t.Error("Default reddit config should carry subreddits")
	}
	if len(reddit.Timeframes) == 0 {
		t.Error("Default reddit config should carry timeframes")
	}
}

func TestConfigCache_InvalidYaml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("settings: [not a map"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Invalid YAML should surface an error")
	}
}
