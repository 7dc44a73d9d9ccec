package generate

import (
	"fmt"
	"strings"
)

const WritingPrompt = `You are drafting one section of a patent application. Write the section body described below.

Rules:
- Follow the content guideline exactly; do not add sections it does not ask for
- Use precise, formal patent language
- For claims, write each claim as a single sentence ending with a period
- Do not repeat the section title or add headings
- Do not wrap the answer in code fences or add commentary before or after the text

Respond with ONLY the section text.`

// BuildSectionPrompt creates the full prompt for writing a section, including
// the ancestor breadcrumb as context.
func BuildSectionPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(WritingPrompt)
	sb.WriteString("\n\n---\n")
	if len(req.Breadcrumb) > 0 {
		sb.WriteString("Document: ")
		sb.WriteString(strings.Join(req.Breadcrumb, " > "))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Section: %q (id %s)\n", req.Title, req.NodeID))
	sb.WriteString("---\n")
	sb.WriteString("Guideline: ")
	sb.WriteString(req.Guideline)
	return sb.String()
}
