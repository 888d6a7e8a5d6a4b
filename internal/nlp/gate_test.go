package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wondertoys/support-chatbot/internal/model"
)

func TestGate(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		threshold  float64
		want       model.Intent
	}{
		{"above threshold passes", 0.8, 0.5, model.IntentGreeting},
		{"exactly at threshold passes", 0.5, 0.5, model.IntentGreeting},
		{"just below is gated", 0.4999, 0.5, model.IntentLowConfidence},
		{"zero is gated", 0.0, 0.5, model.IntentLowConfidence},
		{"zero threshold never gates", 0.0, 0.0, model.IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Gate(model.IntentGreeting, tt.confidence, tt.threshold))
		})
	}
}
