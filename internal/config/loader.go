package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Provider.APIKey = expandEnvVars(cfg.Provider.APIKey)
	cfg.Session.Redis.Password = expandEnvVars(cfg.Session.Redis.Password)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg), nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	return finish(cfg), nil
}

// FromEnv builds a Config from defaults and the process environment only.
// Used where no config file exists, such as a serverless invocation.
func FromEnv() Config {
	return finish(Defaults())
}

func finish(cfg Config) Config {
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	return cfg
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = "lan"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = EnvDevelopment
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = ProviderOpenAI
	}
	if cfg.Provider.Name == ProviderAnthropic && (cfg.Provider.Model == "" || cfg.Provider.Model == DefaultModel) {
		cfg.Provider.Model = DefaultAnthropicModel
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultModel
	}
	if cfg.Provider.MaxTokens == 0 {
		cfg.Provider.MaxTokens = DefaultMaxTokens
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = apiKeyFromEnv(cfg.Provider.Name)
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = StoreMemory
	}
	if cfg.Session.Window == 0 {
		cfg.Session.Window = DefaultWindow
	}
	if cfg.Session.SQLite.Path == "" {
		cfg.Session.SQLite.Path = ":memory:"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// apiKeyFromEnv returns the conventional secret for the named provider.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// applyEnvOverrides reads PORT, NODE_ENV and TUTOR_* environment variables
// and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.Server.Env = strings.ToLower(v)
	}
	if v := os.Getenv("TUTOR_ENV"); v != "" {
		cfg.Server.Env = strings.ToLower(v)
	}
	if v := os.Getenv("TUTOR_PROVIDER"); v != "" {
		cfg.Provider.Name = strings.ToLower(v)
	}
	if v := os.Getenv("TUTOR_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("TUTOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("TUTOR_SESSION_STORE"); v != "" {
		cfg.Session.Store = strings.ToLower(v)
	}
	if v := os.Getenv("TUTOR_REDIS_ADDR"); v != "" {
		cfg.Session.Redis.Addr = v
	}
}
