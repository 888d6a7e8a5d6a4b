package nlp

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/model"
	"github.com/wondertoys/support-chatbot/pkg/logger"
)

// ErrNotTrained is returned by Classify before Train has completed. Callers
// get a neutral result alongside it and must not surface it to the edge.
var ErrNotTrained = errors.New("intent classifier not trained")

// Keyword override tiers. Purchase intent is checked first and only wins when
// no cancellation keyword is present: cancel and purchase share vocabulary,
// and the statistical model systematically confuses them.
var (
	purchaseKeywords = []string{"buy", "purchase", "want to buy", "interested in"}
	cancelKeywords   = []string{"cancel", "stop", "remove", "refund"}
)

const (
	purchaseOverrideConfidence = 0.95
	cancelOverrideConfidence   = 0.90
)

// bayesModel is the trained state: bag-of-words vocabulary plus a multinomial
// Naive Bayes fit. Vocabulary and class weights are built together and
// published together; a reader can never observe a mismatched pair.
type bayesModel struct {
	vocabulary map[string]int
	classes    []string
	classPrior []float64   // log P(class)
	termWeight [][]float64 // log P(term|class), Laplace-smoothed
}

// Classifier assigns an intent label and a confidence score to a message.
// It is safe for concurrent use: Train atomically swaps the whole model,
// Classify reads a snapshot.
type Classifier struct {
	mu     sync.RWMutex
	model  *bayesModel
	logger *logger.Logger
}

// NewClassifier creates an untrained classifier.
func NewClassifier(log *logger.Logger) *Classifier {
	return &Classifier{logger: log}
}

// Trained reports whether Train has completed.
func (c *Classifier) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}

// Train fits the vectorizer and the Naive Bayes weights over the given
// example utterances and publishes them as one unit. Training is one-shot in
// normal operation; calling it again replaces the previous model atomically.
func (c *Classifier) Train(examples map[string][]string) error {
	if len(examples) == 0 {
		return errors.New("training data is empty")
	}

	classes := make([]string, 0, len(examples))
	for intent := range examples {
		classes = append(classes, intent)
	}
	sort.Strings(classes)

	// Build vocabulary over every normalized example.
	vocabulary := make(map[string]int)
	docs := make(map[string][][]string, len(classes))
	totalDocs := 0
	for _, intent := range classes {
		for _, example := range examples[intent] {
			tokens := strings.Fields(Normalize(example))
			if len(tokens) == 0 {
				continue
			}
			for _, tok := range tokens {
				if _, ok := vocabulary[tok]; !ok {
					vocabulary[tok] = len(vocabulary)
				}
			}
			docs[intent] = append(docs[intent], tokens)
			totalDocs++
		}
	}
	if totalDocs == 0 {
		return errors.New("training data has no usable examples")
	}

	vocabSize := len(vocabulary)
	m := &bayesModel{
		vocabulary: vocabulary,
		classes:    classes,
		classPrior: make([]float64, len(classes)),
		termWeight: make([][]float64, len(classes)),
	}

	for ci, intent := range classes {
		counts := make([]float64, vocabSize)
		total := 0.0
		for _, tokens := range docs[intent] {
			for _, tok := range tokens {
				counts[vocabulary[tok]]++
				total++
			}
		}

		m.classPrior[ci] = math.Log(float64(len(docs[intent])) / float64(totalDocs))
		weights := make([]float64, vocabSize)
		for ti := range weights {
			weights[ti] = math.Log((counts[ti] + 1) / (total + float64(vocabSize)))
		}
		m.termWeight[ci] = weights
	}

	c.mu.Lock()
	c.model = m
	c.mu.Unlock()

	c.logger.Info("intent classifier trained",
		zap.Int("examples", totalDocs),
		zap.Int("intents", len(classes)),
		zap.Int("vocabulary", vocabSize),
	)
	return nil
}

// Classify returns the intent label for text and a confidence in [0,1].
//
// The keyword override tier runs before the statistical tier and
// short-circuits on first match. If the classifier is untrained it returns
// the neutral unknown label with zero confidence and ErrNotTrained.
func (c *Classifier) Classify(text string) (model.Intent, float64, error) {
	c.mu.RLock()
	m := c.model
	c.mu.RUnlock()

	if m == nil {
		c.logger.Error("classify called before training")
		return model.IntentUnknown, 0.0, ErrNotTrained
	}

	normalized := Normalize(text)

	if containsAny(normalized, purchaseKeywords) && !containsAny(normalized, cancelKeywords) {
		return model.IntentProductInquiry, purchaseOverrideConfidence, nil
	}
	if containsAny(normalized, cancelKeywords) {
		return model.IntentCancelOrder, cancelOverrideConfidence, nil
	}

	intent, confidence := m.predict(normalized)
	return intent, confidence, nil
}

// predict runs the multinomial Naive Bayes tier and returns the top class
// with its posterior probability. Out-of-vocabulary tokens are dropped, like
// a fitted vectorizer would.
func (m *bayesModel) predict(normalized string) (string, float64) {
	scores := make([]float64, len(m.classes))
	copy(scores, m.classPrior)

	for _, tok := range strings.Fields(normalized) {
		ti, ok := m.vocabulary[tok]
		if !ok {
			continue
		}
		for ci := range scores {
			scores[ci] += m.termWeight[ci][ti]
		}
	}

	best := 0
	maxScore := scores[0]
	for ci, s := range scores {
		if s > maxScore {
			best = ci
			maxScore = s
		}
	}

	// Log-sum-exp normalization turns the joint log-likelihoods into a
	// posterior for the winning class.
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - maxScore)
	}

	return m.classes[best], 1.0 / sum
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
