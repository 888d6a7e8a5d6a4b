package nlp

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/augment"
	"github.com/wondertoys/support-chatbot/pkg/logger"
	"github.com/wondertoys/support-chatbot/pkg/metrics"
)

// matcher binds an entity category to its extraction function. Matchers run
// in declaration order; the first value found for a category is kept and a
// later matcher never revisits it. Precision over recall.
type matcher struct {
	category string
	match    func(text, language string) (string, bool)
}

var (
	orderNumberPattern = regexp.MustCompile(`\b\d{4,6}\b`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePatterns      = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`),
	}
	amountPattern = regexp.MustCompile(`(?i)\$\d+(?:\.\d{2})?|\d+(?:\.\d{2})?\s*(?:dollars?|usd)`)
	datePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b(?:today|tomorrow|yesterday)\b`),
	}
	productPattern = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`)
)

// productStopwords are capitalized sentence-openers that the naive product
// heuristic would otherwise pick up.
var productStopwords = map[string]struct{}{
	"Hello":  {},
	"Please": {},
	"Thank":  {},
	"Could":  {},
	"Would":  {},
	"Should": {},
}

var matchers = []matcher{
	{"order_number", matchFirst(orderNumberPattern)},
	{"email", matchFirst(emailPattern)},
	{"phone", matchAlternates(phonePatterns)},
	{"amount", matchFirst(amountPattern)},
	{"date", matchAlternates(datePatterns)},
	{"product", matchProduct},
}

func matchFirst(re *regexp.Regexp) func(string, string) (string, bool) {
	return func(text, _ string) (string, bool) {
		if m := re.FindString(text); m != "" {
			return m, true
		}
		return "", false
	}
}

func matchAlternates(res []*regexp.Regexp) func(string, string) (string, bool) {
	return func(text, _ string) (string, bool) {
		for _, re := range res {
			if m := re.FindString(text); m != "" {
				return m, true
			}
		}
		return "", false
	}
}

// matchProduct applies the capitalized-multi-word heuristic, English only.
func matchProduct(text, language string) (string, bool) {
	if language != LanguageEnglish {
		return "", false
	}
	for _, candidate := range productPattern.FindAllString(text, -1) {
		if _, stop := productStopwords[candidate]; !stop {
			return candidate, true
		}
	}
	return "", false
}

// Extractor produces a flat category->value entity map for a message.
type Extractor struct {
	augmenter augment.Augmenter
	logger    *logger.Logger
}

// NewExtractor creates an extractor. The augmenter must be non-nil; use
// augment.Noop when no external provider is configured.
func NewExtractor(aug augment.Augmenter, log *logger.Logger) *Extractor {
	return &Extractor{augmenter: aug, logger: log}
}

// Extract runs the augmenter and then the regex matcher battery over the raw
// (unnormalized) message text. Augmenter output merges first; regex matchers
// overwrite the categories they own. At most one value per category survives.
// Nothing here is fatal: a failing source contributes nothing and extraction
// proceeds.
func (e *Extractor) Extract(ctx context.Context, text, language string) map[string]string {
	entities := make(map[string]string)

	augmented, err := e.augmenter.Entities(ctx, text, language)
	if err != nil {
		e.logger.Warn("entity augmenter failed, continuing with regex matchers",
			zap.String("augmenter", e.augmenter.Name()),
			zap.Error(err),
		)
		metrics.RecordAugmenter(e.augmenter.Name(), "error")
	} else if e.augmenter.Name() != "noop" {
		metrics.RecordAugmenter(e.augmenter.Name(), "ok")
	}
	for category, value := range augmented {
		if _, exists := entities[category]; !exists {
			entities[category] = value
		}
	}

	for _, m := range matchers {
		if value, ok := m.match(text, language); ok {
			entities[m.category] = value
		}
	}

	return entities
}
