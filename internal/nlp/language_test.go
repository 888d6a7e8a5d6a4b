package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain english", "where is my order", LanguageEnglish},
		{"empty string", "", LanguageEnglish},
		{"digits and symbols", "#4821!", LanguageEnglish},
		{"pure chinese", "你好", LanguageChinese},
		{"single ideograph wins", "order 订 status", LanguageChinese},
		{"mixed mostly english", "please track 订单", LanguageChinese},
		{"range lower bound", string(rune(0x4E00)), LanguageChinese},
		{"range upper bound", string(rune(0x9FFF)), LanguageChinese},
		{"just below range", string(rune(0x4DFF)), LanguageEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}
