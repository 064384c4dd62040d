package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Cohere   CohereConfig   `mapstructure:"cohere"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the HTTP interface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // local, production
}

// DatabaseConfig configures the relational store.
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // sqlite, postgres
	DSN  string `mapstructure:"dsn"`
}

// AuthConfig configures password hashing and session tokens.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenValidity time.Duration `mapstructure:"token_validity"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
}

// CaptchaConfig configures reCAPTCHA Enterprise verification.
// Disabled skips verification entirely (local development).
type CaptchaConfig struct {
	ProjectID string `mapstructure:"project_id"`
	APIKey    string `mapstructure:"api_key"`
	SiteKey   string `mapstructure:"site_key"`
	Disabled  bool   `mapstructure:"disabled"`
}

// CohereConfig configures the conversational completion client.
type CohereConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	PromptTruncation string        `mapstructure:"prompt_truncation"` // OFF, AUTO
	Temperature      float64       `mapstructure:"temperature"`
	TopK             int           `mapstructure:"top_k"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRetries       int           `mapstructure:"max_retries"` // attempts beyond the first, transient failures only
}

// ChatConfig tunes the chat turn pipeline.
type ChatConfig struct {
	HistoryWindow int    `mapstructure:"history_window"` // context turns sent upstream
	Language      string `mapstructure:"language"`       // language code stored per message
	BotUsername   string `mapstructure:"bot_username"`   // seeded AI persona account
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration in layers, lowest to highest priority:
// defaults → ./config/config.yaml or ./config.yaml → LANGAIDE_* env.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for _, localDir := range []string{"./config", "."} {
		localPath := filepath.Join(localDir, "config.yaml")
		if _, err := os.Stat(localPath); err == nil {
			v.SetConfigFile(localPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", localPath, err)
			}
			break // first local config wins
		}
	}

	v.SetEnvPrefix("LANGAIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LocalPath returns the config file Load would read, or "" when the
// process runs on defaults and env alone.
func LocalPath() string {
	for _, localDir := range []string{"./config", "."} {
		localPath := filepath.Join(localDir, "config.yaml")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "local")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "langaide.db")

	v.SetDefault("auth.token_validity", "24h")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("captcha.disabled", false)

	v.SetDefault("cohere.base_url", "https://api.cohere.ai/v1")
	v.SetDefault("cohere.model", "command-light")
	v.SetDefault("cohere.prompt_truncation", "AUTO")
	v.SetDefault("cohere.temperature", 0.2)
	v.SetDefault("cohere.top_k", 10)
	v.SetDefault("cohere.timeout", "30s")
	v.SetDefault("cohere.max_retries", 2)

	v.SetDefault("chat.history_window", 5)
	v.SetDefault("chat.language", "en")
	v.SetDefault("chat.bot_username", "ai")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
