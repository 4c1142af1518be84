package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the process configuration. Values come from the environment
// (optionally seeded by a .env file) and an optional YAML file.
type Config struct {
	Port        string `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`
	GinMode     string `mapstructure:"gin_mode"`

	LLMProvider    string        `mapstructure:"llm_provider"` // groq, openai, gemini
	LLMModel       string        `mapstructure:"llm_model"`
	LLMTimeout     time.Duration `mapstructure:"llm_timeout"`
	LLMMaxTokens   int           `mapstructure:"llm_max_tokens"`
	LLMTemperature float64       `mapstructure:"llm_temperature"`

	OpenAIKey string `mapstructure:"openai_api_key"`
	GeminiKey string `mapstructure:"gemini_api_key"`
	GroqKey   string `mapstructure:"groq_api_key"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
}

var keys = []string{
	"port", "database_url", "redis_url", "gin_mode",
	"llm_provider", "llm_model", "llm_timeout", "llm_max_tokens", "llm_temperature",
	"openai_api_key", "gemini_api_key", "groq_api_key",
	"cors_allow_origins",
}

// Load reads .env (if present), then the environment, then configFile when
// it is non-empty. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "sqlite:linkedin-agent.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("llm_provider", "groq")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_timeout", "30s")
	v.SetDefault("llm_max_tokens", 150)
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("groq_api_key", "")
	v.SetDefault("cors_allow_origins", "*")

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSAllowOrigins = splitOrigins(v.GetString("cors_allow_origins"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case "groq", "openai", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want groq, openai or gemini)", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	default:
		return c.GroqKey
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
