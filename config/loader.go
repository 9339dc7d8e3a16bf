package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "APF"

var (
	providers = []string{"openai", "openrouter", "deepseek", "mock"}
	drivers   = []string{"file", "redis"}
)

// Load reads path (or config.yaml from ./configs or the working directory
// when path is empty), applies .env and APF_* overrides and validates the
// result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; real environment wins

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyProviderDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.research_model", "perplexity/sonar")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "data/state.json")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key", "ai_framework_data_v7_clean")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideEmptyConfig falls back to the provider's conventional variable
// when no APF key is set.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey != "" {
		return
	}
	env := map[string]string{
		"openai":     "OPENAI_API_KEY",
		"openrouter": "OPENROUTER_API_KEY",
		"deepseek":   "DEEPSEEK_API_KEY",
	}[cfg.LLM.Provider]
	if env != "" {
		cfg.LLM.APIKey = os.Getenv(env)
	}
}

func applyProviderDefaults(cfg *Config) {
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == "openrouter" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
}

func validateConfig(cfg *Config) error {
	if !slices.Contains(providers, cfg.LLM.Provider) {
		return fmt.Errorf("llm.provider %q not supported (want one of %s)", cfg.LLM.Provider, strings.Join(providers, ", "))
	}
	if cfg.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if !slices.Contains(drivers, cfg.Store.Driver) {
		return fmt.Errorf("store.driver %q not supported (want file or redis)", cfg.Store.Driver)
	}
	if cfg.Store.Driver == "file" && cfg.Store.Path == "" {
		return errors.New("store.path is required for the file driver")
	}
	if cfg.Store.Driver == "redis" && cfg.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required for the redis driver")
	}
	return nil
}
