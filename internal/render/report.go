package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
)

// Markdown renders the draft as a review document: every written section
// with its content, followed by the examiner's report when there is one.
func Markdown(tree *pgtree.Tree) string {
	var sb strings.Builder
	if tree.Len() == 0 {
		return ""
	}
	root := tree.Node(tree.Root())
	fmt.Fprintf(&sb, "# %s\n\n", root.Title)

	counts := tree.Counts()
	fmt.Fprintf(&sb, "- Sections: %d\n", tree.Len())
	fmt.Fprintf(&sb, "- Approved: %d\n", counts[pgtree.StatusApproved])
	fmt.Fprintf(&sb, "- Needs revision: %d\n", counts[pgtree.StatusNeedsRevision])
	fmt.Fprintf(&sb, "- Not written: %d\n", counts[pgtree.StatusPending]+counts[pgtree.StatusInProgress])

	leaves := tree.Leaves()
	written := 0
	for _, n := range leaves {
		if n.Status.Written() {
			written++
		}
	}
	fmt.Fprintf(&sb, "- Leaf sections written: %d/%d\n", written, len(leaves))

	tree.Walk(func(i pgtree.Index, path []pgtree.Index) error {
		if i == tree.Root() && root.GeneratedContent == "" {
			return nil
		}
		n := tree.Node(i)
		level := min(max(len(path)+1, 2), 6)
		fmt.Fprintf(&sb, "\n%s %s\n\n", strings.Repeat("#", level), n.Title)
		fmt.Fprintf(&sb, "`%s` · `%s`\n", n.ID, n.Status)
		if n.GeneratedContent != "" {
			fmt.Fprintf(&sb, "\n%s\n", strings.TrimSpace(n.GeneratedContent))
		}
		if n.ExaminationFeedback != "" {
			sb.WriteString("\n<details><summary>Examination</summary>\n\n```\n")
			sb.WriteString(strings.TrimSpace(n.ExaminationFeedback))
			sb.WriteString("\n```\n\n</details>\n")
		}
		return nil
	})
	return sb.String()
}
