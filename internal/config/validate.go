package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}

	validProviders := []string{ProviderOpenAI, ProviderAnthropic}
	if !slices.Contains(validProviders, cfg.Provider.Name) {
		issues = append(issues, ValidationIssue{
			Path:    "provider.name",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Provider.Name),
		})
	}

	if cfg.Provider.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "provider.apiKey",
			Message: "required (set OPENAI_API_KEY or ANTHROPIC_API_KEY)",
		})
	}

	if cfg.Provider.Model == "" {
		issues = append(issues, ValidationIssue{
			Path:    "provider.model",
			Message: "required",
		})
	}

	if cfg.Provider.MaxTokens < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "provider.maxTokens",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Provider.MaxTokens),
		})
	}

	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		issues = append(issues, ValidationIssue{
			Path:    "provider.temperature",
			Message: fmt.Sprintf("must be 0-2, got %g", cfg.Provider.Temperature),
		})
	}

	validStores := []string{StoreMemory, StoreRedis, StoreSQLite}
	if !slices.Contains(validStores, cfg.Session.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "session.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Session.Store),
		})
	}

	if cfg.Session.Window < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "session.window",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Session.Window),
		})
	}

	if cfg.Session.MaxTurns != 0 && cfg.Session.MaxTurns < cfg.Session.Window {
		issues = append(issues, ValidationIssue{
			Path:    "session.maxTurns",
			Message: fmt.Sprintf("must be 0 or at least the window (%d), got %d", cfg.Session.Window, cfg.Session.MaxTurns),
		})
	}

	if cfg.Session.MaxSessions < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.maxSessions",
			Message: "must not be negative",
		})
	}

	if cfg.Session.IdleMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.idleMinutes",
			Message: "must not be negative",
		})
	}

	if cfg.Session.Store == StoreRedis && cfg.Session.Redis.Addr == "" {
		issues = append(issues, ValidationIssue{
			Path:    "session.redis.addr",
			Message: "required when session.store is redis",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
