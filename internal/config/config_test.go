package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TableDelimiter != "\t" {
		t.Errorf("Expected TableDelimiter to be a tab, got %q", cfg.TableDelimiter)
	}
	if cfg.MarkdownFlavor != "gfm" {
		t.Errorf("Expected MarkdownFlavor to be gfm, got %q", cfg.MarkdownFlavor)
	}
	if cfg.CachePath == "" {
		t.Error("Expected CachePath to be set")
	}
	if cfg.CacheEnabled {
		t.Error("Expected the cache to be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"commonmark", func(c *Config) { c.MarkdownFlavor = "commonmark" }, false},
		{"unknown flavor", func(c *Config) { c.MarkdownFlavor = "pandoc" }, true},
		{"negative wrap", func(c *Config) { c.WrapWidth = -1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"cache without path", func(c *Config) { c.CacheEnabled = true; c.CachePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MarkdownFlavor != "gfm" {
		t.Errorf("Expected defaults, got flavor %q", cfg.MarkdownFlavor)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "strict: true\nmarkdown_flavor: commonmark\nwrap_width: 72\ncache_enabled: true\ncache_path: cache.db\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Strict || cfg.MarkdownFlavor != "commonmark" || cfg.WrapWidth != 72 {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.TableDelimiter != "\t" {
		t.Errorf("Expected unset keys to keep defaults, got delimiter %q", cfg.TableDelimiter)
	}
	if !filepath.IsAbs(cfg.CachePath) {
		t.Errorf("Expected CachePath to be absolute, got %q", cfg.CachePath)
	}

	opts := cfg.ConvertOptions()
	if !opts.Strict || opts.Flavor != "commonmark" || opts.TableDelimiter != "\t" {
		t.Errorf("ConvertOptions() = %+v", opts)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "strict: [true\n"},
		{"invalid value", "log_level: shouting\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Parallel = true
	cfg.TableDelimiter = " | "
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.Parallel || loaded.TableDelimiter != " | " {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestConfigPathOverride(t *testing.T) {
	orig := ConfigPath
	defer func() { ConfigPath = orig }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	ConfigPath = func() string { return path }
	if err := os.WriteFile(path, []byte("sanitize_html: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.SanitizeHTML {
		t.Error("Expected SanitizeHTML from the overridden path")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := expandPath("~/x.db")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x.db") {
		t.Errorf("expandPath(~/x.db) = %q", got)
	}
	if got, _ := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q", got)
	}
}
