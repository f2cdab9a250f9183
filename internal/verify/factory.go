package verify

import (
	"fmt"
	"strings"

	"github.com/dmarchante/relvet/internal/model"
)

// NewProvider creates a verification provider based on configuration.
func NewProvider(cfg model.VerifierConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return NewOllamaProvider(cfg)

	case "openai":
		return NewOpenAIProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown verifier provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}
