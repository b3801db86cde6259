package llm

import (
	"context"
	"testing"
)

type fakeProvider struct {
	name  string
	reply string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, system string, turns []Turn, opts Options) (string, error) {
	return f.reply, nil
}

func TestResolveByName(t *testing.T) {
	openai := &fakeProvider{name: "openai"}
	ollama := &fakeProvider{name: "ollama"}
	r := NewRegistry(openai, ollama)

	p, err := r.Resolve("ollama", "Vanilla")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if p != ollama {
		t.Fatalf("expected ollama, got %s", p.Name())
	}
}

func TestResolveAutoRoutesByModel(t *testing.T) {
	openai := &fakeProvider{name: "openai"}
	ollama := &fakeProvider{name: "ollama"}
	r := NewRegistry(openai, ollama)

	cases := []struct {
		model string
		want  string
	}{
		{"Vanilla", "ollama"},
		{"Matcha", "ollama"},
		{"Strawberry", "openai"},
		{"Unicorn", "openai"},
	}
	for _, tc := range cases {
		p, err := r.Resolve("auto", tc.model)
		if err != nil {
			t.Fatalf("Resolve(%s) err: %v", tc.model, err)
		}
		if p.Name() != tc.want {
			t.Fatalf("Resolve(auto, %s) = %s, want %s", tc.model, p.Name(), tc.want)
		}
	}
}

func TestResolveFallsBackWhenRouteUnconfigured(t *testing.T) {
	only := &fakeProvider{name: "openai"}
	r := NewRegistry(only)

	// Vanilla routes to ollama, which is not configured here.
	p, err := r.Resolve("", "Vanilla")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if p != only {
		t.Fatalf("expected fallback to the first provider, got %s", p.Name())
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	r := NewRegistry(&fakeProvider{name: "openai"})
	if _, err := r.Resolve("bedrock", "Vanilla"); err == nil {
		t.Fatal("expected error for unconfigured provider name")
	}
}

func TestResolveEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	if !r.Empty() {
		t.Fatal("registry should report empty")
	}
	if _, err := r.Resolve("auto", "Vanilla"); err == nil {
		t.Fatal("expected error with no providers")
	}
}

func TestNewRegistrySkipsNilAndDuplicates(t *testing.T) {
	first := &fakeProvider{name: "openai", reply: "first"}
	dup := &fakeProvider{name: "openai", reply: "second"}
	r := NewRegistry(nil, first, dup)

	p, err := r.Resolve("openai", "")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	got, _ := p.Generate(context.Background(), "", nil, Options{})
	if got != "first" {
		t.Fatalf("first registration must win, got %q", got)
	}
}
