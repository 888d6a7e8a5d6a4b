package nlp

import (
	"github.com/wondertoys/support-chatbot/internal/model"
)

// Gate applies the confidence threshold: below it the intent is forced to the
// reserved low_confidence label. The numeric confidence is left for the
// caller to pass through unchanged.
func Gate(intent model.Intent, confidence, threshold float64) model.Intent {
	if confidence < threshold {
		return model.IntentLowConfidence
	}
	return intent
}
