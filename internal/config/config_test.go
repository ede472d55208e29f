package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
apis:
  openweather_key: ow-key
  gemini_key: gm-key
  sparkpost_key: sp-key
location:
  city: Seattle
  country_code: US
email:
  recipient: me@example.com
  from_address: briefing@example.com
  subject: Your Morning Briefing
news:
  max_articles: 5
  rss_feeds:
    tech:
      title: Tech News
      url: https://example.com/tech.rss
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIs.OpenWeatherKey != "ow-key" {
		t.Errorf("openweather key = %q", cfg.APIs.OpenWeatherKey)
	}
	if cfg.Location.City != "Seattle" || cfg.Location.CountryCode != "US" {
		t.Errorf("unexpected location: %+v", cfg.Location)
	}
	if cfg.News.MaxArticles != 5 {
		t.Errorf("max_articles = %d, want 5", cfg.News.MaxArticles)
	}
	if got := cfg.News.Feeds["tech"]; got.Title != "Tech News" || got.URL != "https://example.com/tech.rss" {
		t.Errorf("unexpected feed: %+v", got)
	}

	// Defaults survive when the file omits the section.
	if cfg.News.SummarySentences != 3 {
		t.Errorf("summary_sentences default = %d, want 3", cfg.News.SummarySentences)
	}
	if cfg.News.SummaryModel != "gemini-2.0-flash" {
		t.Errorf("summary_model default = %q", cfg.News.SummaryModel)
	}
	if cfg.Template.Path != "templates/briefing.html" {
		t.Errorf("template path default = %q", cfg.Template.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Dir != "logs" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "apis: [not a map"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "env-ow")
	t.Setenv("GEMINI_API_KEY", "env-gm")
	t.Setenv("SPARKPOST_API_KEY", "env-sp")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIs.OpenWeatherKey != "env-ow" {
		t.Errorf("env override not applied: %q", cfg.APIs.OpenWeatherKey)
	}
	if cfg.APIs.GeminiKey != "env-gm" || cfg.APIs.SparkPostKey != "env-sp" {
		t.Errorf("env overrides not applied: %+v", cfg.APIs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing openweather key", func(c *Config) { c.APIs.OpenWeatherKey = "" }, "apis.openweather_key"},
		{"missing gemini key", func(c *Config) { c.APIs.GeminiKey = "" }, "apis.gemini_key"},
		{"missing sparkpost key", func(c *Config) { c.APIs.SparkPostKey = "" }, "apis.sparkpost_key"},
		{"missing city", func(c *Config) { c.Location.City = "" }, "location.city"},
		{"missing recipient", func(c *Config) { c.Email.Recipient = "" }, "email.recipient"},
		{"missing from address", func(c *Config) { c.Email.FromAddress = "" }, "email.from_address"},
		{"missing subject", func(c *Config) { c.Email.Subject = "" }, "email.subject"},
		{"no feeds", func(c *Config) { c.News.Feeds = nil }, "rss_feeds"},
		{"feed missing title", func(c *Config) { c.News.Feeds["tech"] = FeedConfig{URL: "https://example.com"} }, "missing title"},
		{"feed missing url", func(c *Config) { c.News.Feeds["tech"] = FeedConfig{Title: "Tech"} }, "missing url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
