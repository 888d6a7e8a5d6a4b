// Package augment provides the optional external named-entity capability
// that runs ahead of the regex matcher battery.
package augment

import (
	"context"
	"strings"
)

// Augmenter supplies named entities from an external NLP provider. Extraction
// merges its output first; regex matchers overwrite overlapping categories.
type Augmenter interface {
	// Entities returns a flat category->value map for text. Category keys are
	// lowercase. A nil map is a valid "nothing found" result.
	Entities(ctx context.Context, text, language string) (map[string]string, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of entity augmentation provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderNone      Provider = "none"
)

// New creates an augmenter for the given provider. An empty API key or an
// unknown provider yields the no-op augmenter, so callers never have to probe
// for presence at runtime.
func New(provider Provider, apiKey string) (Augmenter, error) {
	if apiKey == "" {
		return Noop{}, nil
	}
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIAugmenter(apiKey)
	case ProviderAnthropic:
		return NewAnthropicAugmenter(apiKey)
	default:
		return Noop{}, nil
	}
}

// Noop is the default augmenter: it contributes nothing.
type Noop struct{}

// Entities implements Augmenter.
func (Noop) Entities(context.Context, string, string) (map[string]string, error) {
	return nil, nil
}

// Name implements Augmenter.
func (Noop) Name() string { return "noop" }

// entityPrompt instructs the model to emit a flat JSON object. Categories are
// open-ended on purpose; the extractor lowercases keys and regex matchers
// override the ones they own.
const entityPrompt = `Extract named entities from the customer message below.
Respond with a single JSON object mapping lowercase entity categories
(for example person, location, organization, product, date) to the exact
text span from the message. Respond with {} if there are none.
Message: `

// extractJSONObject pulls the first {...} block out of a model response,
// tolerating code fences and surrounding prose.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// normalizeEntities lowercases keys and drops empty values.
func normalizeEntities(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
