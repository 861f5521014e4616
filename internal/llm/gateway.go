package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nikhilbhutani/examiner/internal/config"
)

type gateway struct {
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
}

// NewGateway registers a provider for every credential present in cfg.
// Providers without credentials are simply absent; requests routed to them
// fail with ErrProviderNotConfigured.
func NewGateway(ctx context.Context, cfg config.LLMConfig) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.DefaultProvider,
		defaultModel:    cfg.DefaultModel,
	}

	if cfg.GoogleKey != "" {
		p, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.GoogleKey})
		if err != nil {
			slog.Error("gemini client init failed", "error", err)
		} else {
			g.providers["gemini"] = p
		}
	}
	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g
}

// NewGatewayWithProviders builds a gateway over an explicit provider set.
func NewGatewayWithProviders(defaultProvider, defaultModel string, providers ...Provider) Gateway {
	g := &gateway{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, name)
	}
	return p, nil
}

func (g *gateway) Configured() bool {
	_, ok := g.providers[g.defaultProvider]
	return ok
}

func (g *gateway) DefaultProvider() string { return g.defaultProvider }

func (g *gateway) DefaultModel() string { return g.defaultModel }

// Chat performs a single completion. There is no retry: callers decide how
// to degrade on error.
func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}
	if req.Model == "" && providerName == g.defaultProvider {
		req.Model = g.defaultModel
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	return p.ChatCompletion(ctx, req)
}

func (g *gateway) ListModels() []ModelInfo {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var models []ModelInfo
	for _, name := range names {
		p := g.providers[name]
		for _, m := range p.Models() {
			models = append(models, ModelInfo{
				Provider: p.Name(),
				Model:    m,
				Type:     "chat",
			})
		}
	}
	return models
}
