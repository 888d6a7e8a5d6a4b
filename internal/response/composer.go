// Package response maps classified intents to reply text.
package response

import (
	"errors"
	"fmt"

	"github.com/wondertoys/support-chatbot/internal/model"
)

// ErrTemplateMissing signals an incomplete template table: a known intent has
// no phrasing for a supported language. This is a configuration defect and
// must fail fast, never silently degrade.
var ErrTemplateMissing = errors.New("response template missing")

// templates is the per-intent, per-language reply table.
var templates = map[model.Intent]map[string]string{
	model.IntentOrderStatus: {
		"en": "I'll help you check your order status. Please provide your order number.",
		"zh": "我来帮您查询订单状态。请提供订单号。",
	},
	model.IntentCancelOrder: {
		"en": "I understand you want to cancel an order. Please provide your order number so I can help you.",
		"zh": "我理解您想取消订单。请提供订单号，我来帮您处理。",
	},
	model.IntentProductInquiry: {
		"en": "I'd love to help you find the perfect product! What are you looking for? Toys or gifts?",
		"zh": "我很乐意帮您找到合适的产品！您在寻找什么？玩具还是礼品？",
	},
	model.IntentGreeting: {
		"en": "Hello! How can I help you today?",
		"zh": "您好！今天我能为您做些什么？",
	},
	model.IntentGoodbye: {
		"en": "Thank you for contacting us. Have a great day!",
		"zh": "感谢您联系我们，祝您愉快！",
	},
	model.IntentFallback: {
		"en": "I'm not sure I understand. Could you please rephrase your question?",
		"zh": "我不太理解您的意思，能否换个方式表达？",
	},
}

// orderStatusWithNumber is the dedicated phrasing used when an order_status
// reply can interpolate an extracted order number.
var orderStatusWithNumber = map[string]string{
	"en": "Let me check order #%s for you.",
	"zh": "让我为您查询订单 #%s。",
}

// Composer renders replies from the template table.
type Composer struct{}

// NewComposer creates a composer over the built-in template table.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose looks up the reply for (intent, language), interpolating the order
// number into the order_status phrasing when one was extracted. Unrecognized
// intents (including the reserved low_confidence label) use the fallback
// template. A non-empty context hint is prepended verbatim. An unknown
// language for a known intent returns ErrTemplateMissing.
func (c *Composer) Compose(intent model.Intent, language string, entities map[string]string, hint string) (string, error) {
	perLanguage, ok := templates[intent]
	if !ok {
		intent = model.IntentFallback
		perLanguage = templates[model.IntentFallback]
	}

	var text string
	if intent == model.IntentOrderStatus && entities["order_number"] != "" {
		format, ok := orderStatusWithNumber[language]
		if !ok {
			return "", fmt.Errorf("%w: intent %q language %q", ErrTemplateMissing, intent, language)
		}
		text = fmt.Sprintf(format, entities["order_number"])
	} else {
		text, ok = perLanguage[language]
		if !ok {
			return "", fmt.Errorf("%w: intent %q language %q", ErrTemplateMissing, intent, language)
		}
	}

	return hint + text, nil
}

// Validate checks that every intent has a phrasing for every supported
// language. Run at startup so an incomplete table is caught before serving.
func (c *Composer) Validate(languages []string) error {
	for intent, perLanguage := range templates {
		for _, lang := range languages {
			if _, ok := perLanguage[lang]; !ok {
				return fmt.Errorf("%w: intent %q language %q", ErrTemplateMissing, intent, lang)
			}
		}
	}
	for _, lang := range languages {
		if _, ok := orderStatusWithNumber[lang]; !ok {
			return fmt.Errorf("%w: order_status interpolation language %q", ErrTemplateMissing, lang)
		}
	}
	return nil
}
