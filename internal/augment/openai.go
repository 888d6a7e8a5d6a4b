package augment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAugmenter extracts named entities through the OpenAI chat API.
type OpenAIAugmenter struct {
	client *openai.Client
	model  string
}

// NewOpenAIAugmenter creates a new OpenAI-backed augmenter.
func NewOpenAIAugmenter(apiKey string) (*OpenAIAugmenter, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIAugmenter{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
	}, nil
}

// Name implements Augmenter.
func (a *OpenAIAugmenter) Name() string { return string(ProviderOpenAI) }

// Entities implements Augmenter.
func (a *OpenAIAugmenter) Entities(ctx context.Context, text, language string) (map[string]string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: entityPrompt + text,
			},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("openai entity extraction: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}

	return parseEntityResponse(resp.Choices[0].Message.Content)
}

func parseEntityResponse(content string) (map[string]string, error) {
	blob := extractJSONObject(content)
	if blob == "" {
		return nil, nil
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("malformed entity response: %w", err)
	}

	return normalizeEntities(raw), nil
}
