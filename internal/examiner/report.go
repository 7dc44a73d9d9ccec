package examiner

import (
	"fmt"
	"strings"

	"github.com/dgallion1/patentdraft/internal/knowledge"
	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/dgallion1/patentdraft/internal/segment"
)

const (
	excerptRunes = 100
	snippetRunes = 50
)

// Evidence is what one query returned.
type Evidence struct {
	Query   string
	Results []knowledge.Record
}

// findings is the outcome of the retrieval step for one node.
type findings struct {
	ran      bool
	skipNote string
	evidence []Evidence
}

func (f findings) verdict(minSimilarity float64) pgtree.Status {
	for _, ev := range f.evidence {
		for _, r := range ev.Results {
			if r.Similarity >= minSimilarity {
				return pgtree.StatusNeedsRevision
			}
		}
	}
	return pgtree.StatusApproved
}

func buildReport(n pgtree.Node, f findings, verdict pgtree.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Examination report for '%s'\n", n.Title)
	fmt.Fprintf(&b, "Content excerpt: %s\n", segment.Excerpt(n.GeneratedContent, excerptRunes))

	if f.ran {
		b.WriteString("\nRetrieved references:\n")
		for _, ev := range f.evidence {
			fmt.Fprintf(&b, "  Query: %s\n", ev.Query)
			if len(ev.Results) == 0 {
				b.WriteString("    - no strongly related references\n")
				continue
			}
			for _, r := range ev.Results {
				fmt.Fprintf(&b, "    - %s (similarity %.2f): %s\n",
					r.Title, r.Similarity, segment.Excerpt(r.Snippet, snippetRunes))
			}
		}
	} else {
		fmt.Fprintf(&b, "\nNo prior-art comparison: %s.\n", f.skipNote)
	}

	b.WriteString("\n")
	if verdict == pgtree.StatusNeedsRevision {
		b.WriteString("Related references exist. Compare the section against them and sharpen the distinguishing features before filing.\n")
	} else {
		b.WriteString("No conflicting references were found. Check wording and support in the description.\n")
	}
	fmt.Fprintf(&b, "Verdict: %s", verdict)
	return b.String()
}
