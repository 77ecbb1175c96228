package acl

import (
	"fmt"

	"github.com/gzizouseif24/tarot-reader/internal/platform/config"
	"github.com/gzizouseif24/tarot-reader/internal/ports"
)

// Generator is a provider adapter: it generates readings, reports its
// credential and takes part in readiness.
type Generator interface {
	ports.ReadingGenerator
	ports.CredentialStatus
	ports.HealthChecker
}

var (
	_ Generator = (*CompletionClient)(nil)
	_ Generator = (*AnthropicClient)(nil)
)

// NewGenerator picks the adapter for cfg.LLM.Provider. An empty provider
// means DashScope.
func NewGenerator(cfg CompletionClientConfig) (Generator, error) {
	switch cfg.LLM.Provider {
	case "", config.ProviderDashScope:
		return NewCompletionClient(cfg)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
