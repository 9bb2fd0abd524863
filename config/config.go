package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/opd-ai/bookpress/paginate"
)

type Config struct {
	Book      Book      `mapstructure:"book"`
	Formatter Formatter `mapstructure:"formatter"`
	Render    Render    `mapstructure:"render"`
	Output    Output    `mapstructure:"output"`
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
}

type Book struct {
	Title     string `mapstructure:"title"`
	Author    string `mapstructure:"author"`
	Font      string `mapstructure:"font"`
	FontFile  string `mapstructure:"font_file"`
	StartPage int    `mapstructure:"start_page"`
	FirstPage string `mapstructure:"first_page"`
}

type Formatter struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	FontSize   int           `mapstructure:"font_size"`
	LineHeight string        `mapstructure:"line_height"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	Retries    int           `mapstructure:"retries"`
}

type Render struct {
	Engine     string        `mapstructure:"engine"`
	PageSize   string        `mapstructure:"page_size"`
	Margins    Margins       `mapstructure:"margins"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ChromePath string        `mapstructure:"chrome_path"`
}

type Margins struct {
	Top    string `mapstructure:"top"`
	Bottom string `mapstructure:"bottom"`
	Left   string `mapstructure:"left"`
	Right  string `mapstructure:"right"`
}

type Output struct {
	Dir  string `mapstructure:"dir"`
	Book string `mapstructure:"book"`
}

type Server struct {
	Addr      string `mapstructure:"addr"`
	TLS       bool   `mapstructure:"tls"`
	Cert      string `mapstructure:"cert"`
	Key       string `mapstructure:"key"`
	RateLimit int    `mapstructure:"rate_limit"`
}

type Log struct {
	File string `mapstructure:"file"`
}

var providers = map[string]bool{"openai": true, "anthropic": true, "gemini": true, "markdown": true}

var engines = map[string]bool{"chrome": true, "fpdf": true}

var pageSizes = map[string]bool{"a4": true, "a5": true, "letter": true, "legal": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("book.title", "")
	v.SetDefault("book.author", "")
	v.SetDefault("book.font", "Times")
	v.SetDefault("book.font_file", "")
	v.SetDefault("book.start_page", 1)
	v.SetDefault("book.first_page", "recto")

	v.SetDefault("formatter.provider", "openai")
	v.SetDefault("formatter.model", "")
	v.SetDefault("formatter.base_url", "")
	v.SetDefault("formatter.api_key", "")
	v.SetDefault("formatter.font_size", 16)
	v.SetDefault("formatter.line_height", "140%")
	v.SetDefault("formatter.cache_ttl", 24*time.Hour)
	v.SetDefault("formatter.retries", 0)

	v.SetDefault("render.engine", "chrome")
	v.SetDefault("render.page_size", "A4")
	v.SetDefault("render.margins.top", "70px")
	v.SetDefault("render.margins.bottom", "60px")
	v.SetDefault("render.margins.left", "70px")
	v.SetDefault("render.margins.right", "40px")
	v.SetDefault("render.timeout", 2*time.Minute)
	v.SetDefault("render.chrome_path", "")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.book", "book.pdf")

	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert", "certs/server.crt")
	v.SetDefault("server.key", "certs/server.key")
	v.SetDefault("server.rate_limit", 30)

	v.SetDefault("log.file", "")
}

// Load reads configuration from configPath (or bookpress.yaml in the working
// directory or home directory when empty), a .env file and BOOKPRESS_*
// environment variables.
func Load(configPath string) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("bookpress")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("BOOKPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if config.Formatter.APIKey == "" {
		config.Formatter.APIKey = apiKeyFromEnv(config.Formatter.Provider)
	}
	return &config, nil
}

func apiKeyFromEnv(provider string) string {
	var names []string
	switch provider {
	case "openai":
		names = []string{"OPENAI_API_KEY"}
	case "anthropic":
		names = []string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}
	case "gemini":
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, name := range names {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	if _, err := c.Book.Context(); err != nil {
		return err
	}
	if !providers[c.Formatter.Provider] {
		return fmt.Errorf("unknown formatter provider %q", c.Formatter.Provider)
	}
	if c.Formatter.FontSize <= 0 {
		return fmt.Errorf("formatter font size must be positive, got %d", c.Formatter.FontSize)
	}
	if c.Formatter.Provider != "markdown" && c.Formatter.APIKey == "" {
		return fmt.Errorf("no API key configured for formatter provider %s", c.Formatter.Provider)
	}
	if !engines[c.Render.Engine] {
		return fmt.Errorf("unknown render engine %q", c.Render.Engine)
	}
	if !pageSizes[strings.ToLower(c.Render.PageSize)] {
		return fmt.Errorf("unknown page size %q", c.Render.PageSize)
	}
	return nil
}

// Context builds the pagination context for the book's first chapter.
func (b Book) Context() (paginate.Context, error) {
	first, err := paginate.ParseOrientation(b.FirstPage)
	if err != nil {
		return paginate.Context{}, err
	}
	return paginate.NewContext(b.Title, b.Author, b.Font, b.StartPage, first)
}
