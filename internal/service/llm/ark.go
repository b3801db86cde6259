package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ArkProvider adapts an eino chat model (Volcengine Ark) to the Provider
// interface. The model instance is built from configuration at startup.
type ArkProvider struct {
	chatModel model.ChatModel
}

// NewArkProvider wraps an already-configured chat model.
func NewArkProvider(chatModel model.ChatModel) *ArkProvider {
	return &ArkProvider{chatModel: chatModel}
}

func (p *ArkProvider) Name() string { return "ark" }

// Generate runs a single completion through the eino model. Ark model
// selection happens at construction time, so opts.Model is ignored here.
func (p *ArkProvider) Generate(ctx context.Context, system string, turns []Turn, opts Options) (string, error) {
	messages := make([]*schema.Message, 0, len(turns)+1)
	messages = append(messages, schema.SystemMessage(system))
	for _, t := range turns {
		switch t.Role {
		case "assistant":
			messages = append(messages, schema.AssistantMessage(t.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(t.Content))
		}
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("ark generation failed: %w", err)
	}
	return response.Content, nil
}
