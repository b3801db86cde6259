package llm

import (
	"context"
	"fmt"
	"log"
)

// defaultModelRoute picks a provider per personality model when the caller
// asks for automatic routing. Models absent from the map use the registry
// default.
var defaultModelRoute = map[string]string{
	"Vanilla":       "ollama",
	"Vanilla Short": "ollama",
	"Matcha":        "ollama",
	"Strawberry":    "openai",
	"Chocolate":     "openai",
	"Peach":         "ollama",
	"Blueberry":     "openai",
	"Mint":          "openai",
	"Blackberry":    "openai",
	"Rainbow":       "openai",
	"Unicorn":       "openai",
	"Sage":          "openai",
}

// Registry resolves a provider name (or "auto") to a configured Provider.
type Registry struct {
	providers map[string]Provider
	order     []string
	route     map[string]string
}

// NewRegistry builds a registry over the configured providers, in priority
// order for fallback selection.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		route:     defaultModelRoute,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, dup := r.providers[p.Name()]; dup {
			continue
		}
		r.providers[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	return r
}

// Empty reports whether no provider is configured at all.
func (r *Registry) Empty() bool {
	return len(r.order) == 0
}

// Resolve maps a requested provider name to a configured Provider. Empty or
// "auto" routes by personality model, falling back to the first configured
// provider. A name that is neither known nor configured is an error.
func (r *Registry) Resolve(name, personalityModel string) (Provider, error) {
	if r.Empty() {
		return nil, fmt.Errorf("no llm provider configured")
	}

	chosen := name
	if chosen == "" || chosen == "auto" {
		chosen = r.route[personalityModel]
		if _, ok := r.providers[chosen]; !ok {
			chosen = r.order[0]
		}
	}

	p, ok := r.providers[chosen]
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q", chosen)
	}
	return p, nil
}

// Generate resolves a provider and runs the completion.
func (r *Registry) Generate(ctx context.Context, providerName, personalityModel, system string, turns []Turn, opts Options) (string, error) {
	p, err := r.Resolve(providerName, personalityModel)
	if err != nil {
		return "", err
	}
	log.Printf("[llm] model=%s -> provider=%s (hint=%s)", personalityModel, p.Name(), opts.Model)
	return p.Generate(ctx, system, turns, opts)
}
