// Package config loads and validates daybrief configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all daybrief configuration.
type Config struct {
	APIs     APIsConfig     `yaml:"apis"`
	Location LocationConfig `yaml:"location"`
	Calendar CalendarConfig `yaml:"calendar"`
	Email    EmailConfig    `yaml:"email"`
	News     NewsConfig     `yaml:"news"`
	Template TemplateConfig `yaml:"template"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIsConfig holds API keys for external services.
type APIsConfig struct {
	OpenWeatherKey string `yaml:"openweather_key"`
	GeminiKey      string `yaml:"gemini_key"`
	SparkPostKey   string `yaml:"sparkpost_key"`
}

// LocationConfig identifies the city for weather lookups.
type LocationConfig struct {
	City        string `yaml:"city"`
	CountryCode string `yaml:"country_code"`
}

// CalendarConfig configures Google Calendar access.
type CalendarConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// EmailConfig configures briefing delivery.
type EmailConfig struct {
	Recipient   string `yaml:"recipient"`
	FromAddress string `yaml:"from_address"`
	Subject     string `yaml:"subject"`
}

// NewsConfig configures RSS sources and summarization.
type NewsConfig struct {
	Feeds            map[string]FeedConfig `yaml:"rss_feeds"`
	MaxArticles      int                   `yaml:"max_articles"`
	SummarySentences int                   `yaml:"summary_sentences"`
	SummaryModel     string                `yaml:"summary_model"`
}

// FeedConfig is one RSS feed entry.
type FeedConfig struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// TemplateConfig locates the briefing template.
type TemplateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // log file directory; empty disables file output
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Calendar: CalendarConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
		News: NewsConfig{
			MaxArticles:      10,
			SummarySentences: 3,
			SummaryModel:     "gemini-2.0-flash",
		},
		Template: TemplateConfig{
			Path: "templates/briefing.html",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// Load reads configuration from a YAML file, applies environment overrides,
// and validates the result. A missing file is an error: the briefing cannot
// run without API keys and feed sources.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables take precedence over the
// file, so keys can stay out of checked-in configs.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		c.APIs.OpenWeatherKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIs.GeminiKey = v
	}
	if v := os.Getenv("SPARKPOST_API_KEY"); v != "" {
		c.APIs.SparkPostKey = v
	}
}

// Validate checks that every section the pipeline depends on is present.
func (c *Config) Validate() error {
	if c.APIs.OpenWeatherKey == "" {
		return fmt.Errorf("missing required configuration: apis.openweather_key")
	}
	if c.APIs.GeminiKey == "" {
		return fmt.Errorf("missing required configuration: apis.gemini_key")
	}
	if c.APIs.SparkPostKey == "" {
		return fmt.Errorf("missing required configuration: apis.sparkpost_key")
	}

	if c.Location.City == "" || c.Location.CountryCode == "" {
		return fmt.Errorf("missing required configuration: location.city and location.country_code")
	}

	if c.Email.Recipient == "" {
		return fmt.Errorf("missing required configuration: email.recipient")
	}
	if c.Email.FromAddress == "" {
		return fmt.Errorf("missing required configuration: email.from_address")
	}
	if c.Email.Subject == "" {
		return fmt.Errorf("missing required configuration: email.subject")
	}

	if len(c.News.Feeds) == 0 {
		return fmt.Errorf("configuration error: news.rss_feeds must have at least one feed")
	}
	for key, feed := range c.News.Feeds {
		if feed.Title == "" {
			return fmt.Errorf("configuration error: news.rss_feeds.%s missing title", key)
		}
		if feed.URL == "" {
			return fmt.Errorf("configuration error: news.rss_feeds.%s missing url", key)
		}
	}

	return nil
}
