package augment

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAugmenter extracts named entities through the Anthropic API.
type AnthropicAugmenter struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicAugmenter creates a new Anthropic-backed augmenter.
func NewAnthropicAugmenter(apiKey string) (*AnthropicAugmenter, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	return &AnthropicAugmenter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  "claude-3-5-haiku-20241022",
	}, nil
}

// Name implements Augmenter.
func (a *AnthropicAugmenter) Name() string { return string(ProviderAnthropic) }

// Entities implements Augmenter.
func (a *AnthropicAugmenter) Entities(ctx context.Context, text, language string) (map[string]string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(a.model),
		MaxTokens: anthropic.F(int64(256)),
		Messages: anthropic.F([]anthropic.MessageParam{
			{
				Role: anthropic.F(anthropic.MessageParamRoleUser),
				Content: anthropic.F([]anthropic.ContentBlockParamUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(entityPrompt + text),
					},
				}),
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic entity extraction: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}

	return parseEntityResponse(content)
}
