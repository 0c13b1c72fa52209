package config

import "fmt"

// Environment modes.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Session store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

const (
	DefaultPort           = 3456
	DefaultModel          = "gpt-5.2"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultMaxTokens      = 4096
	DefaultTemperature    = 0.7
	DefaultTimeoutSeconds = 120
	DefaultWindow         = 30
	DefaultMaxTurns       = 200
	DefaultMaxSessions    = 10000
	DefaultIdleMinutes    = 720
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: DefaultPort,
			Bind: "lan",
			Env:  EnvDevelopment,
		},
		Provider: ProviderConfig{
			Name:           ProviderOpenAI,
			Model:          DefaultModel,
			MaxTokens:      DefaultMaxTokens,
			Temperature:    DefaultTemperature,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Session: SessionConfig{
			Store:       StoreMemory,
			Window:      DefaultWindow,
			MaxTurns:    DefaultMaxTurns,
			MaxSessions: DefaultMaxSessions,
			IdleMinutes: DefaultIdleMinutes,
			SQLite:      SQLiteConfig{Path: ":memory:"},
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
