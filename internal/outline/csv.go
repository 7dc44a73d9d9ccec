package outline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
)

// CSVLoader reads a flat outline with the columns id, title,
// content_guideline and parent_id. Rows without a parent hang off the root.
// Column order is taken from the header row.
type CSVLoader struct{}

func (l *CSVLoader) Load(r io.Reader, filename string) (*pgtree.Spec, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: missing header row")
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("parse csv: missing title column")
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	type row struct {
		spec   *pgtree.Spec
		parent string
		line   int
	}
	var rows []row
	byID := make(map[string]*pgtree.Spec)
	for n, rec := range records[1:] {
		s := &pgtree.Spec{
			ID:               pgtree.NodeID(cell(rec, "id")),
			Title:            cell(rec, "title"),
			ContentGuideline: cell(rec, "content_guideline"),
		}
		if s.ID != "" {
			if _, dup := byID[string(s.ID)]; dup {
				return nil, fmt.Errorf("parse csv: line %d: duplicate id %q", n+2, s.ID)
			}
			byID[string(s.ID)] = s
		}
		rows = append(rows, row{spec: s, parent: cell(rec, "parent_id"), line: n + 2})
	}

	var top []*pgtree.Spec
	for _, rw := range rows {
		if rw.parent == "" {
			top = append(top, rw.spec)
			continue
		}
		p, ok := byID[rw.parent]
		if !ok {
			return nil, fmt.Errorf("parse csv: line %d: unknown parent_id %q", rw.line, rw.parent)
		}
		p.Children = append(p.Children, rw.spec)
	}

	// Rows in a parent cycle never hang off a top-level row.
	reached := make(map[*pgtree.Spec]bool, len(rows))
	var mark func(s *pgtree.Spec)
	mark = func(s *pgtree.Spec) {
		reached[s] = true
		for _, c := range s.Children {
			mark(c)
		}
	}
	for _, s := range top {
		mark(s)
	}
	for _, rw := range rows {
		if !reached[rw.spec] {
			return nil, fmt.Errorf("parse csv: line %d: parent_id %q does not lead to a top-level row", rw.line, rw.parent)
		}
	}

	if len(top) == 1 {
		return top[0], nil
	}
	return &pgtree.Spec{Title: docTitle(filename), Children: top}, nil
}
