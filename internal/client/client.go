// Package client implements the remote procedure boundary to the chat
// backend. The controller only ever sees the Remote interface; the HTTP
// shape lives here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/emochi/emochi/internal/model/chat"
)

// Remote is the request/response boundary the session controller depends on.
type Remote interface {
	SendMessage(ctx context.Context, chatID string, req chat.MessageRequest) (*chat.MessageResponse, error)
	SetModel(ctx context.Context, chatID, model string) error
	SetSettings(ctx context.Context, chatID string, req chat.SettingsRequest) error
}

// HTTPClient talks to the backend REST surface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for the backend at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SendMessage posts a user turn and returns the generated reply.
func (c *HTTPClient) SendMessage(ctx context.Context, chatID string, req chat.MessageRequest) (*chat.MessageResponse, error) {
	var resp chat.MessageResponse
	if err := c.post(ctx, fmt.Sprintf("/chat/%s/message", url.PathEscape(chatID)), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetModel switches the active personality model for a chat.
func (c *HTTPClient) SetModel(ctx context.Context, chatID, model string) error {
	return c.post(ctx, fmt.Sprintf("/chat/%s/model", url.PathEscape(chatID)), chat.ModelRequest{Model: model}, nil)
}

// SetSettings applies a sparse character-settings update.
func (c *HTTPClient) SetSettings(ctx context.Context, chatID string, req chat.SettingsRequest) error {
	return c.post(ctx, fmt.Sprintf("/chat/%s/settings", url.PathEscape(chatID)), req, nil)
}

// post sends a JSON body and decodes the response into out when non-nil.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("backend returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
