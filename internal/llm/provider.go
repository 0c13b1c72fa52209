package llm

import (
	"fmt"

	"github.com/soyeahso/prelims-tutor/internal/config"
)

// NewFromConfig builds the client named by cfg.Name.
func NewFromConfig(cfg config.ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, &config.ConfigError{Message: "provider API key is not set"}
	}
	switch cfg.Name {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, &config.ConfigError{Message: fmt.Sprintf("unsupported provider %q", cfg.Name)}
	}
}
