package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWeatherURL  = "https://api.weatherapi.com/v1"
	DefaultNewsURL     = "https://newsapi.org/v2"
	DefaultStocksURL   = "https://api.twelvedata.com"
	DefaultTelegramURL = "https://api.telegram.org"
)

// DefaultThreshold is the alert threshold in percent when none is configured.
const DefaultThreshold = 3.0

// DefaultSymbols is the watchlist used when config.yaml names none.
var DefaultSymbols = []string{"AAPL", "TSLA", "MSFT", "GOOGL", "AMZN"}

// Config is loaded once at startup and handed to each component.
type Config struct {
	// Secrets, environment only.
	WeatherAPIKey    string `yaml:"-"`
	NewsAPIKey       string `yaml:"-"`
	StocksAPIKey     string `yaml:"-"`
	OpenAIAPIKey     string `yaml:"-"`
	AnthropicAPIKey  string `yaml:"-"`
	TelegramBotToken string `yaml:"-"`
	TelegramChatID   string `yaml:"-"`

	Weather struct {
		DefaultLocation string `yaml:"default_location"`
	} `yaml:"weather"`
	News struct {
		DefaultTopic string `yaml:"default_topic"`
		PageSize     int    `yaml:"page_size"`
	} `yaml:"news"`
	Stocks struct {
		Symbols   []string `yaml:"symbols"`
		Threshold float64  `yaml:"threshold"`
	} `yaml:"stocks"`
	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
	Summarizer struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"summarizer"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Endpoints struct {
		Weather  string `yaml:"weather"`
		News     string `yaml:"news"`
		Stocks   string `yaml:"stocks"`
		Telegram string `yaml:"telegram"`
	} `yaml:"endpoints"`
}

// Load reads .env (if present), then the YAML file at path (if present),
// then the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		if err := loadYAML(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Defaults returns a configuration built from .env and the environment only,
// for use when the YAML file cannot be read.
func Defaults() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// Path returns the config file location, honouring ALERTAGENT_CONFIG.
func Path() string {
	return getEnvOrDefault("ALERTAGENT_CONFIG", "config.yaml")
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func (c *Config) applyEnv() {
	c.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))
	c.NewsAPIKey = strings.TrimSpace(os.Getenv("NEWS_API_KEY"))
	c.StocksAPIKey = strings.TrimSpace(os.Getenv("TWELVE_DATA_API_KEY"))
	c.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.AnthropicAPIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	c.TelegramBotToken = strings.TrimSpace(os.Getenv("TG_BOT_TOKEN"))
	c.TelegramChatID = strings.TrimSpace(os.Getenv("TG_CHAT_ID"))

	if p := strings.TrimSpace(os.Getenv("ALERTAGENT_HISTORY_DB")); p != "" {
		c.History.Path = p
	}
}

func (c *Config) applyDefaults() {
	if c.Weather.DefaultLocation == "" {
		c.Weather.DefaultLocation = "London"
	}
	if c.News.DefaultTopic == "" {
		c.News.DefaultTopic = "stock market"
	}
	if c.News.PageSize <= 0 {
		c.News.PageSize = 5
	}

	symbols := make([]string, 0, len(c.Stocks.Symbols))
	for _, s := range c.Stocks.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		symbols = append(symbols, DefaultSymbols...)
	}
	c.Stocks.Symbols = symbols
	// Zero means unset.
	if c.Stocks.Threshold < 0 {
		log.WithField("threshold", c.Stocks.Threshold).Warn("Negative stock threshold ignored, using 3.0")
	}
	if c.Stocks.Threshold <= 0 {
		c.Stocks.Threshold = DefaultThreshold
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "logs"
	}
	c.Summarizer.Provider = strings.ToLower(strings.TrimSpace(c.Summarizer.Provider))
	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = "openai"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 30 * time.Second
	}

	if c.Endpoints.Weather == "" {
		c.Endpoints.Weather = DefaultWeatherURL
	}
	if c.Endpoints.News == "" {
		c.Endpoints.News = DefaultNewsURL
	}
	if c.Endpoints.Stocks == "" {
		c.Endpoints.Stocks = DefaultStocksURL
	}
	if c.Endpoints.Telegram == "" {
		c.Endpoints.Telegram = DefaultTelegramURL
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
