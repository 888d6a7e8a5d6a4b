package conversation

import (
	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/internal/nlp"
)

// hintRule maps a (previous intent, current intent) transition to a
// per-language hint prepended to the reply. Rules are evaluated in order and
// the first match wins; extending the table is how new transitions are added,
// not branching logic.
type hintRule struct {
	previous model.Intent
	current  model.Intent
	hint     map[string]string
}

var hintRules = []hintRule{
	{
		previous: model.IntentGreeting,
		current:  model.IntentProductInquiry,
		hint: map[string]string{
			nlp.LanguageEnglish: "Great, let's find something for you! ",
			nlp.LanguageChinese: "好的，我们来为您挑选！",
		},
	},
}

// ContextHint inspects the most recent turn in the context window and returns
// the transition hint for the current intent, or empty when no rule applies.
func ContextHint(context []model.Turn, current model.Intent, language string) string {
	if len(context) == 0 {
		return ""
	}

	previous := context[len(context)-1].Intent
	for _, rule := range hintRules {
		if rule.previous == previous && rule.current == current {
			if hint, ok := rule.hint[language]; ok {
				return hint
			}
			return rule.hint[nlp.LanguageEnglish]
		}
	}
	return ""
}
