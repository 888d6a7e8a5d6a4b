package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/pkg/logger"
)

func trainedClassifier(t *testing.T) *Classifier {
	t.Helper()
	c := NewClassifier(logger.NewNop())
	require.NoError(t, c.Train(DefaultTrainingData))
	return c
}

func TestClassifyUntrained(t *testing.T) {
	c := NewClassifier(logger.NewNop())

	intent, confidence, err := c.Classify("hello")
	assert.ErrorIs(t, err, ErrNotTrained)
	assert.Equal(t, model.IntentUnknown, intent)
	assert.Zero(t, confidence)
	assert.False(t, c.Trained())
}

func TestTrainEmptyCorpus(t *testing.T) {
	c := NewClassifier(logger.NewNop())
	assert.Error(t, c.Train(nil))
	assert.Error(t, c.Train(map[string][]string{"greeting": {"?!"}}))
}

func TestClassifyPurchaseOverride(t *testing.T) {
	c := trainedClassifier(t)

	for _, text := range []string{
		"I want to buy a toy",
		"can I purchase this game",
		"I'm interested in the blue one",
	} {
		intent, confidence, err := c.Classify(text)
		require.NoError(t, err)
		assert.Equal(t, model.IntentProductInquiry, intent, "text %q", text)
		assert.Equal(t, 0.95, confidence)
	}
}

func TestClassifyCancelOverride(t *testing.T) {
	c := trainedClassifier(t)

	for _, text := range []string{
		"please cancel my order 4821",
		"stop the shipment",
		"I need a refund",
	} {
		intent, confidence, err := c.Classify(text)
		require.NoError(t, err)
		assert.Equal(t, model.IntentCancelOrder, intent, "text %q", text)
		assert.Equal(t, 0.90, confidence)
	}
}

// A message carrying both purchase and cancel vocabulary must resolve to
// cancellation: "cancel my purchase" is not a purchase.
func TestClassifyCancelBeatsPurchase(t *testing.T) {
	c := trainedClassifier(t)

	intent, confidence, err := c.Classify("cancel my purchase")
	require.NoError(t, err)
	assert.Equal(t, model.IntentCancelOrder, intent)
	assert.Equal(t, 0.90, confidence)
}

func TestClassifyStatistical(t *testing.T) {
	c := trainedClassifier(t)

	tests := []struct {
		text string
		want model.Intent
	}{
		{"hello", model.IntentGreeting},
		{"goodbye", model.IntentGoodbye},
		{"where is my order", model.IntentOrderStatus},
		{"I want a gift", model.IntentProductInquiry},
		{"你好", model.IntentGreeting},
	}

	for _, tt := range tests {
		intent, confidence, err := c.Classify(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, intent, "text %q", tt.text)
		assert.GreaterOrEqual(t, confidence, 0.5, "text %q", tt.text)
		assert.LessOrEqual(t, confidence, 1.0, "text %q", tt.text)
	}
}

func TestClassifyOutOfVocabulary(t *testing.T) {
	c := trainedClassifier(t)

	// No token overlaps the corpus: the posterior collapses to the priors
	// and spreads across all classes.
	intent, confidence, err := c.Classify("quux zork blee")
	require.NoError(t, err)
	assert.NotEmpty(t, intent)
	assert.Less(t, confidence, 0.5)
}

func TestRetrainReplacesModel(t *testing.T) {
	c := trainedClassifier(t)

	require.NoError(t, c.Train(map[string][]string{
		"only_intent": {"zebra stripes", "zebra crossing"},
	}))

	intent, confidence, err := c.Classify("zebra")
	require.NoError(t, err)
	assert.Equal(t, "only_intent", intent)
	assert.InDelta(t, 1.0, confidence, 1e-9)
}
