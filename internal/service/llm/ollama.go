package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaModel = "llama2"

// OllamaProvider calls a local Ollama daemon. Ollama's generate endpoint
// takes a flat prompt, so the conversation is flattened into ROLE: lines.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaProvider returns a provider for the daemon at baseURL.
func NewOllamaProvider(baseURL string) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options"`
	Stream  bool           `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Text     string `json:"text"`
}

// Generate runs a single completion against /api/generate.
func (p *OllamaProvider) Generate(ctx context.Context, system string, turns []Turn, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}

	var prompt strings.Builder
	prompt.WriteString("SYSTEM: " + system)
	for _, t := range turns {
		prompt.WriteString("\n" + strings.ToUpper(t.Role) + ": " + t.Content)
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  model,
		Prompt: prompt.String(),
		Options: map[string]any{
			"num_predict": opts.MaxTokens,
			"temperature": opts.Temperature,
		},
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama request failed: %s - %s", resp.Status, string(b))
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if parsed.Response != "" {
		return parsed.Response, nil
	}
	return parsed.Text, nil
}
