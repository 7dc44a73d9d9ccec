// Package render formats draft trees for terminals and for review reports.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/dgallion1/patentdraft/internal/segment"
	"github.com/fatih/color"
)

const contentPreviewRunes = 100

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer. Pretty output uses colors and markers.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Tree prints every section with its id and status, a content preview and
// the first line of any examination feedback.
func (r *Renderer) Tree(tree *pgtree.Tree) string {
	var sb strings.Builder
	tree.Walk(func(i pgtree.Index, path []pgtree.Index) error {
		n := tree.Node(i)
		indent := strings.Repeat("  ", len(path))

		fmt.Fprintf(&sb, "%s%s %s (ID: %s, %s)\n", indent, r.marker(n.Status), n.Title, n.ID, r.status(n.Status))
		if n.GeneratedContent != "" {
			preview := strings.ReplaceAll(segment.Excerpt(n.GeneratedContent, contentPreviewRunes), "\n", " ")
			fmt.Fprintf(&sb, "%s    Content: %s\n", indent, r.dim(preview))
		}
		if n.ExaminationFeedback != "" {
			first, _, _ := strings.Cut(n.ExaminationFeedback, "\n")
			fmt.Fprintf(&sb, "%s    Feedback: %s\n", indent, r.dim(first))
		}
		return nil
	})
	return sb.String()
}

// Summary prints one line with the number of nodes per status in lifecycle
// order.
func (r *Renderer) Summary(tree *pgtree.Tree) string {
	counts := tree.Counts()
	parts := make([]string, 0, len(counts))
	for _, s := range pgtree.AllStatuses {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r.status(s), counts[s]))
		}
	}
	return fmt.Sprintf("%d sections: %s", tree.Len(), strings.Join(parts, ", "))
}

func (r *Renderer) marker(s pgtree.Status) string {
	if !r.pretty {
		return "-"
	}
	switch s {
	case pgtree.StatusApproved:
		return color.GreenString("✓")
	case pgtree.StatusNeedsRevision:
		return color.YellowString("!")
	case pgtree.StatusInProgress, pgtree.StatusUnderExamination:
		return color.RedString("✗")
	case pgtree.StatusCompleted, pgtree.StatusNeedsReview:
		return color.CyanString("•")
	}
	return color.HiBlackString("○")
}

func (r *Renderer) status(s pgtree.Status) string {
	if !r.pretty {
		return string(s)
	}
	switch s {
	case pgtree.StatusApproved:
		return color.GreenString(string(s))
	case pgtree.StatusNeedsRevision:
		return color.YellowString(string(s))
	case pgtree.StatusInProgress, pgtree.StatusUnderExamination:
		return color.RedString(string(s))
	}
	return string(s)
}

func (r *Renderer) dim(s string) string {
	if !r.pretty {
		return s
	}
	return color.HiBlackString(s)
}
