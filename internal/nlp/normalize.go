package nlp

import (
	"regexp"
	"strings"
)

// Keep word characters, whitespace and CJK ideographs; everything else is
// stripped.
var nonWordPattern = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fff}]`)

// Normalize lowercases text, strips punctuation and trims surrounding
// whitespace. It is applied identically at training time and inference time;
// the two must never diverge. Trimming happens after punctuation removal so
// the transform is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
