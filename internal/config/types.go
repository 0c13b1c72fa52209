package config

// Config is the root configuration for the tutor service.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Provider  ProviderConfig  `yaml:"provider,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	StudyPlan StudyPlanConfig `yaml:"studyPlan,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP/WebSocket gateway.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Env            string   `yaml:"env,omitempty"` // "development" | "production"
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// Production reports whether the hosting platform owns the listen socket.
func (s ServerConfig) Production() bool {
	return s.Env == EnvProduction
}

// ProviderConfig selects and tunes the completion provider.
type ProviderConfig struct {
	Name             string  `yaml:"name,omitempty"` // "openai" | "anthropic"
	APIKey           string  `yaml:"apiKey,omitempty"`
	Model            string  `yaml:"model,omitempty"`
	BaseURL          string  `yaml:"baseUrl,omitempty"`
	MaxTokens        int     `yaml:"maxTokens,omitempty"`
	Temperature      float64 `yaml:"temperature,omitempty"`
	TimeoutSeconds   int     `yaml:"timeoutSeconds,omitempty"`
	SystemPromptFile string  `yaml:"systemPromptFile,omitempty"`
}

// SessionConfig defines conversation history storage.
type SessionConfig struct {
	Store       string       `yaml:"store,omitempty"` // "memory" | "redis" | "sqlite"
	Window      int          `yaml:"window,omitempty"`
	MaxTurns    int          `yaml:"maxTurns,omitempty"`
	MaxSessions int          `yaml:"maxSessions,omitempty"`
	IdleMinutes int          `yaml:"idleMinutes,omitempty"`
	Redis       RedisConfig  `yaml:"redis,omitempty"`
	SQLite      SQLiteConfig `yaml:"sqlite,omitempty"`
}

// RedisConfig locates the external cache used by the redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// SQLiteConfig locates the sqlite database. ":memory:" keeps history
// process-local.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// StudyPlanConfig optionally overrides the built-in study plan.
type StudyPlanConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
