package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for KAIVA
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Abstract AbstractConfig `mapstructure:"abstract"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// LLMConfig holds chat-completion configuration
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AbstractConfig holds lease abstract generation configuration
type AbstractConfig struct {
	Model         string        `mapstructure:"model"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
	Retention     time.Duration `mapstructure:"retention"`
}

// UploadConfig holds the lease backend location advertised to clients
type UploadConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds the abstract store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("KAIVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "KAIVA_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 500)

	v.SetDefault("abstract.model", "gpt-4")
	v.SetDefault("abstract.temperature", 0.0)
	v.SetDefault("abstract.max_input_chars", 12000)
	v.SetDefault("abstract.retention", 24*time.Hour)

	v.SetDefault("upload.base_url", "http://127.0.0.1:8000")

	v.SetDefault("database.path", ":memory:")

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000", "https://kaiva.ai"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HasCredential reports whether a completion API key is configured
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}
