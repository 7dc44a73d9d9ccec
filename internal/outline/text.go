package outline

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
)

// TextLoader reads an indented plain-text outline. Each non-blank line is a
// section written as "Title" or "Title: guideline"; two spaces or one tab of
// indentation nest it one level deeper. A full-width colon also separates
// the guideline.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (*pgtree.Spec, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	h := newHeadingStack(docTitle(filename))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := indentDepth(line)
		title, guideline := splitEntry(strings.TrimSpace(line))
		h.heading(depth+1, title)
		h.text(guideline)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return h.spec(), nil
}

func indentDepth(line string) int {
	spaces := 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			spaces += 2
		default:
			return spaces / 2
		}
	}
	return spaces / 2
}

func splitEntry(line string) (title, guideline string) {
	if t, g, ok := strings.Cut(line, ":"); ok {
		return t, g
	}
	t, g, _ := strings.Cut(line, "：")
	return t, g
}
