package feed

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeSource(t, tempDir, "eliza-blog", `
url: "https://example.com/feed.xml"
title: "ElizaOS Blog"
format: atom

settings:
  enabled: true
  refresh_interval: 1800
  max_items: 25
  timeout: 15

filters:
  - field: "title"
    includes:
      - "release"
    excludes:
      - "spam"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 sourceConfig, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("eliza-blog")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "eliza-blog" {
		t.Errorf("Expected name 'eliza-blog', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.Title != "ElizaOS Blog" {
		t.Errorf("Expected title 'ElizaOS Blog', got '%s'", sourceConfig.Title)
	}
	if sourceConfig.Format != "atom" {
		t.Errorf("Expected format 'atom', got '%s'", sourceConfig.Format)
	}
	if sourceConfig.Settings.RefreshInterval != 1800 {
		t.Errorf("Expected refresh interval 1800, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", sourceConfig.Settings.MaxItems)
	}
	if len(sourceConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(sourceConfig.Filters))
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeSource(t, tempDir, "test", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Format != "rss" {
		t.Errorf("Expected default format 'rss', got '%s'", sourceConfig.Format)
	}
	if sourceConfig.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxItems != 50 {
		t.Errorf("Expected default max items 50, got %d", sourceConfig.Settings.MaxItems)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"missing url": `
settings:
  enabled: true
`,
		"bad url": `
url: "not a url"
`,
		"unknown format": `
url: "https://example.com/feed.xml"
format: "csv"
`,
		"broken yaml": `
url: [unterminated
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeSource(t, tempDir, "invalid", content)

			configCache := NewConfigCache(tempDir)
			if err := configCache.Run(); err == nil {
				t.Error("Expected error for invalid sourceConfig")
			}
		})
	}
}

func TestConfigCacheMissingAndEmptyDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}

	configCache = NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 sourceConfigs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheEnabledConfigsAndNames(t *testing.T) {
	tempDir := t.TempDir()

	writeSource(t, tempDir, "zeta", `
url: "https://example.com/zeta.xml"
settings:
  enabled: true
`)
	writeSource(t, tempDir, "alpha", `
url: "https://example.com/alpha.xml"
settings:
  enabled: false
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if names := configCache.Names(); !reflect.DeepEqual(names, []string{"alpha", "zeta"}) {
		t.Errorf("Expected sorted names [alpha zeta], got %v", names)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["zeta"] == nil {
		t.Errorf("Expected only 'zeta' enabled, got %v", enabled)
	}

	all := configCache.GetConfigs()
	delete(all, "zeta")
	if configCache.GetConfigCount() != 2 {
		t.Error("GetConfigs must return a copy")
	}

	if _, err := configCache.GetConfig("missing"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestConfigCacheValidateConfigNil(t *testing.T) {
	configCache := NewConfigCache("")
	if err := configCache.validateConfig(nil); err == nil {
		t.Error("Expected error for nil sourceConfig, got none")
	}
}

func TestConfigCacheValidateConfigNegativeValues(t *testing.T) {
	configCache := NewConfigCache("")

	sourceConfig := &Config{
		Name: "test-source",
		URL:  "https://example.com/feed.xml",
	}

	sourceConfig.Settings.RefreshInterval = -1
	if err := configCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for negative refresh interval, got none")
	}

	sourceConfig.Settings.RefreshInterval = 3600
	sourceConfig.Settings.MaxItems = -1
	if err := configCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for negative max items, got none")
	}

	sourceConfig.Settings.MaxItems = 100
	sourceConfig.Settings.Timeout = -1
	if err := configCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for negative timeout, got none")
	}
}

func TestConfigCacheValidateConfigFilters(t *testing.T) {
	configCache := NewConfigCache("")

	sourceConfig := &Config{
		Name: "test-source",
		URL:  "https://example.com/feed.xml",
	}

	for _, field := range []string{"title", "summary", "authors", "link", "categories"} {
		sourceConfig.Filters = []ConfigFilter{{Field: field, Includes: []string{"test"}}}
		if err := configCache.validateConfig(sourceConfig); err != nil {
			t.Errorf("Expected no error for valid filter field '%s', got: %v", field, err)
		}
	}

	sourceConfig.Filters = []ConfigFilter{{Field: "content", Includes: []string{"test"}}}
	if err := configCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for invalid filter field, got none")
	}

	sourceConfig.Filters = []ConfigFilter{{Field: "title"}}
	if err := configCache.validateConfig(sourceConfig); err == nil {
		t.Error("Expected error for filter with no includes or excludes, got none")
	}
}
