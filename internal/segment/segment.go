package segment

import (
	"strings"
	"unicode"
)

// EstimateTokens gives a rough token count. Latin text is counted by words at
// ~1.33 tokens per word; CJK characters count one token each since they are
// not space-delimited.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	cjk := 0
	var latin strings.Builder
	for _, r := range text {
		if isCJK(r) {
			cjk++
			latin.WriteRune(' ')
			continue
		}
		latin.WriteRune(r)
	}
	words := len(strings.Fields(latin.String()))
	tokens := int(float64(words)*1.33) + cjk
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// SplitSentences does basic sentence splitting. ASCII terminators end a
// sentence only when followed by whitespace or the end of text, so decimals
// like "3.5" stay intact. Full-width terminators always end a sentence.
// Empty sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		switch r {
		case '。', '！', '？', '；':
			flush()
		case '.', '!', '?', ';':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// Excerpt returns at most n runes of text, trimmed, with "..." appended when
// something was cut.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
