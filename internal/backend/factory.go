package backend

import (
	"fmt"

	"scenesmith/internal/config"
)

// NewRemoteFromConfig creates the remote backend for the configured
// provider.
func NewRemoteFromConfig(cfg *config.Config) (*Remote, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		ac := DefaultAnthropicConfig(cfg.LLM.APIKey)
		if cfg.LLM.BaseURL != "" {
			ac.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.Model != "" {
			ac.Model = cfg.LLM.Model
		}
		ac.Timeout = cfg.GetLLMTimeout()
		return NewRemote(NewAnthropicClientWithConfig(ac)), nil

	case "gemini":
		return NewRemote(NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model)), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.LLM.Provider)
	}
}

// NewLocalFromConfig creates the local backend.
func NewLocalFromConfig(cfg *config.Config) *Local {
	return NewLocal(NewLocalClient(cfg.Local.BaseURL, cfg.Local.Model, cfg.GetLocalTimeout()))
}
