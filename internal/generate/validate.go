package generate

import (
	"errors"
	"regexp"
	"strings"
)

// MaxContentRunes caps a generated section.
const MaxContentRunes = 20000

var ErrEmptyContent = errors.New("generator returned empty content")

var codeBlockRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*(.*?)\\s*```$")

var preamblePattern = regexp.MustCompile(
	`(?i)^(sure|certainly|of course|here is|here's)[^\n]*:\s*\n`,
)

// CleanContent normalizes raw model output into section text: code fences and
// chatty preambles are stripped and the text is capped at MaxContentRunes.
func CleanContent(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	s = strings.TrimSpace(preamblePattern.ReplaceAllString(s, ""))
	if s == "" {
		return "", ErrEmptyContent
	}
	if r := []rune(s); len(r) > MaxContentRunes {
		s = string(r[:MaxContentRunes])
	}
	return s, nil
}
