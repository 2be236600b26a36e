package llm

import (
	"fmt"
	"strings"

	"docsift/internal/config"
	"docsift/internal/port"
)

// ProviderFactory is a function that creates a DocumentStructurer from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.DocumentStructurer, error)

// registry of structurer provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a structurer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewStructurer creates a DocumentStructurer from a provider config using
// the registered factory.
func NewStructurer(cfg *config.LLMProviderConfig) (port.DocumentStructurer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the structurer chain for a deployment: the primary
// provider alone, or a FallbackStructurer when secondary/tertiary
// providers are configured.
func NewFromConfig(cfg *config.LLMConfig) (port.DocumentStructurer, error) {
	var chain []port.DocumentStructurer
	var names []string

	for _, pc := range []*config.LLMProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
		if pc == nil {
			continue
		}
		s, err := NewStructurer(pc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
		names = append(names, pc.Provider)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no llm provider configured")
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallbackStructurer(chain, names), nil
}

// Registered returns the registered provider names, for diagnostics.
func Registered() string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
