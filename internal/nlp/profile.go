package nlp

import (
	"regexp"
)

// Lightweight keyword tagging recorded on each turn for analytics. This is
// separate from entity extraction: interests and topics are sets of labels,
// not extracted values.

var interestPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"toys", regexp.MustCompile(`(?i)\b(toy|toys|doll|dolls|action figure|game|games|puzzle|puzzles)\b`)},
	{"gifts", regexp.MustCompile(`(?i)\b(gift|gifts|present|presents)\b`)},
	{"books", regexp.MustCompile(`(?i)\b(book|books|reading|educational)\b`)},
	{"electronics", regexp.MustCompile(`(?i)\b(electronic|electronics|gadget|gadgets|tablet|phone)\b`)},
}

var topicPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"order_management", regexp.MustCompile(`(?i)\b(order|purchase|buy|bought|cancel|return|refund)\b`)},
	{"product_inquiry", regexp.MustCompile(`(?i)\b(product|item|toy|gift|available|stock|price|cost)\b`)},
	{"shipping", regexp.MustCompile(`(?i)\b(ship|shipping|delivery|delivered|track|tracking)\b`)},
	{"support", regexp.MustCompile(`(?i)\b(help|support|problem|issue|question|assist)\b`)},
	{"account", regexp.MustCompile(`(?i)\b(account|profile|login|password|register|sign up)\b`)},
}

// Interests returns the product-interest categories mentioned in text.
func Interests(text string) []string {
	var out []string
	for _, p := range interestPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.name)
		}
	}
	return out
}

// Topics returns the conversation topic labels mentioned in text.
func Topics(text string) []string {
	var out []string
	for _, p := range topicPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.name)
		}
	}
	return out
}
