// Package nlp implements the conversational intent pipeline: language
// detection, text normalization, intent classification and entity extraction.
package nlp

// Supported language tags.
const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"
)

// SupportedLanguages lists every tag Detect can return. The response template
// table must cover all of them.
var SupportedLanguages = []string{LanguageEnglish, LanguageChinese}

// Detect classifies text by script. Any codepoint in the CJK Unified
// Ideographs range selects Chinese; everything else falls through to English.
// Deliberately crude: deterministic and dependency-free beats accurate here.
func Detect(text string) string {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			return LanguageChinese
		}
	}
	return LanguageEnglish
}
