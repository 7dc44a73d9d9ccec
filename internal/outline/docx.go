package outline

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/fumiama/go-docx"
)

// DOCXLoader turns paragraphs with Heading styles into sections.
type DOCXLoader struct{}

func (l *DOCXLoader) Load(r io.Reader, filename string) (*pgtree.Spec, error) {
	// go-docx needs a ReaderAt and size; outlines are small enough to buffer.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	h := newHeadingStack(docTitle(filename))
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if level := headingStyleLevel(para); level > 0 {
			h.heading(level, text)
		} else {
			h.text(text)
		}
	}
	return h.spec(), nil
}

// headingStyleLevel reads "Heading1" or "heading 1" style names.
func headingStyleLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ReplaceAll(strings.ToLower(para.Properties.Style.Val), " ", "")
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	rest := strings.TrimPrefix(style, "heading")
	if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
