package examiner

import (
	"strings"

	"github.com/dgallion1/patentdraft/internal/segment"
)

const solutionQueryRunes = 30

// IdentifyQueries picks prior-art queries from a section. Claim sections
// contribute their leading sentences, technical-solution sections one query
// made of the opening of their content. Any other section yields none.
func IdentifyQueries(title, content string, maxClaims int) []string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "权利要求") || strings.Contains(lower, "claim"):
		sentences := segment.SplitSentences(content)
		if maxClaims >= 0 && len(sentences) > maxClaims {
			sentences = sentences[:maxClaims]
		}
		return sentences
	case strings.Contains(lower, "技术方案") || strings.Contains(lower, "technical solution"):
		lead := []rune(strings.TrimSpace(content))
		if len(lead) > solutionQueryRunes {
			lead = lead[:solutionQueryRunes]
		}
		if len(lead) == 0 {
			return nil
		}
		return []string{strings.TrimSpace(string(lead))}
	}
	return nil
}
