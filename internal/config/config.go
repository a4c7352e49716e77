package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"setupwizard/internal/history"
)

// Config holds settings resolved from .env and the environment. Command
// line flags override individual fields afterwards.
type Config struct {
	Provider string
	Model    string

	Strict      bool
	MinAgents   int
	MinCommands int
	MinRules    int

	Retries   int
	CacheSize int

	HistoryPath string
	NoHistory   bool
}

// Providers checked for an API key, in preference order, when
// SETUPWIZARD_PROVIDER is unset.
var providerKeys = []struct{ provider, env string }{
	{"gemini", "GEMINI_API_KEY"},
	{"groq", "GROQ_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
}

// Load reads .env from the working directory (if present) and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Provider: strings.ToLower(firstNonEmpty(env("SETUPWIZARD_PROVIDER"), detectProvider())),
		Model:    env("SETUPWIZARD_MODEL"),
	}
	var err error
	if c.Strict, err = boolEnv("SETUPWIZARD_STRICT", false); err != nil {
		return nil, err
	}
	if c.MinAgents, err = intEnv("SETUPWIZARD_MIN_AGENTS", 2); err != nil {
		return nil, err
	}
	if c.MinCommands, err = intEnv("SETUPWIZARD_MIN_COMMANDS", 0); err != nil {
		return nil, err
	}
	if c.MinRules, err = intEnv("SETUPWIZARD_MIN_RULES", 2); err != nil {
		return nil, err
	}
	if c.Retries, err = intEnv("LLM_RETRIES", 3); err != nil {
		return nil, err
	}
	if c.CacheSize, err = intEnv("SETUPWIZARD_CACHE_SIZE", 16); err != nil {
		return nil, err
	}
	if c.NoHistory, err = boolEnv("SETUPWIZARD_NO_HISTORY", false); err != nil {
		return nil, err
	}
	c.HistoryPath = env("SETUPWIZARD_HISTORY")
	if c.HistoryPath == "" && !c.NoHistory {
		if p, err := history.DefaultPath(); err == nil {
			c.HistoryPath = p
		} else {
			c.NoHistory = true
		}
	}
	return c, nil
}

// APIKeyEnv names the variable holding the key for provider, or "" for
// providers that need none.
func APIKeyEnv(provider string) string {
	for _, pk := range providerKeys {
		if pk.provider == provider {
			return pk.env
		}
	}
	return ""
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("config: no LLM provider configured; set one of GEMINI_API_KEY, GROQ_API_KEY, ANTHROPIC_API_KEY or SETUPWIZARD_PROVIDER=fake")
	}
	if k := APIKeyEnv(c.Provider); k != "" && env(k) == "" {
		return fmt.Errorf("config: provider %s needs %s", c.Provider, k)
	}
	if c.MinAgents < 0 || c.MinCommands < 0 || c.MinRules < 0 {
		return fmt.Errorf("config: minimums must not be negative")
	}
	return nil
}

func detectProvider() string {
	for _, pk := range providerKeys {
		if env(pk.env) != "" {
			return pk.provider
		}
	}
	return ""
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intEnv(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, raw)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean", key, raw)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
