package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opd-ai/bookpress/paginate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookpress.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
book:
  title: Gita
  author: Vyasa
  font: Courier
  start_page: 15
  first_page: left
formatter:
  provider: markdown
  font_size: 18
  line_height: 135%
  cache_ttl: 1h
render:
  page_size: Letter
  margins:
    top: 1in
  timeout: 30s
server:
  rate_limit: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Book.Title != "Gita" || cfg.Book.Author != "Vyasa" || cfg.Book.StartPage != 15 {
		t.Errorf("book = %+v", cfg.Book)
	}
	if cfg.Formatter.FontSize != 18 || cfg.Formatter.LineHeight != "135%" || cfg.Formatter.CacheTTL != time.Hour {
		t.Errorf("formatter = %+v", cfg.Formatter)
	}
	if cfg.Render.Margins.Top != "1in" || cfg.Render.Margins.Bottom != "60px" {
		t.Errorf("margins = %+v", cfg.Render.Margins)
	}
	if cfg.Render.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Render.Timeout)
	}
	if cfg.Server.RateLimit != 5 || cfg.Server.Addr != ":8081" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	c, err := cfg.Book.Context()
	if err != nil {
		t.Fatal(err)
	}
	if c.FirstPage != paginate.Verso || c.Font != "Courier" {
		t.Errorf("context = %+v", c)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "book:\n  title: From File\n")
	t.Setenv("BOOKPRESS_BOOK_TITLE", "From Env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Book.Title != "From Env" {
		t.Errorf("title = %q", cfg.Book.Title)
	}
	if cfg.Formatter.Provider != "openai" || cfg.Formatter.APIKey != "sk-test" {
		t.Errorf("formatter = %+v", cfg.Formatter)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, "formatter:\n  provider: markdown\n"))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := map[string]func(*Config){
		"start page":  func(c *Config) { c.Book.StartPage = 0 },
		"orientation": func(c *Config) { c.Book.FirstPage = "sideways" },
		"provider":    func(c *Config) { c.Formatter.Provider = "cohere" },
		"font size":   func(c *Config) { c.Formatter.FontSize = 0 },
		"page size":   func(c *Config) { c.Render.PageSize = "B5" },
		"engine":      func(c *Config) { c.Render.Engine = "wkhtmltopdf" },
		"api key":     func(c *Config) { c.Formatter.Provider = "gemini"; c.Formatter.APIKey = "" },
	}
	for name, mutate := range tests {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
