package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/patentdraft/internal/segment"
	"gopkg.in/yaml.v3"
)

// Document is one reference held by a MemorySource.
type Document struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

// MemorySource ranks an in-process corpus by term overlap with the query.
// It is read-only after construction and safe for concurrent use.
type MemorySource struct {
	docs  []Document
	terms []map[string]struct{}
}

func NewMemorySource(docs []Document) *MemorySource {
	m := &MemorySource{
		docs:  make([]Document, len(docs)),
		terms: make([]map[string]struct{}, len(docs)),
	}
	copy(m.docs, docs)
	for i, d := range m.docs {
		m.terms[i] = termSet(d.Title + " " + d.Text)
	}
	return m
}

// Search scores each document by the share of query terms it contains.
// Documents sharing no terms are left out.
func (m *MemorySource) Search(ctx context.Context, query string, k int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := termSet(query)
	if len(q) == 0 {
		return nil, nil
	}

	var out []Record
	for i, d := range m.docs {
		hits := 0
		for term := range q {
			if _, ok := m.terms[i][term]; ok {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		out = append(out, Record{
			ID:         d.ID,
			Title:      d.Title,
			Similarity: float64(hits) / float64(len(q)),
			Snippet:    segment.Excerpt(d.Text, 120),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Len returns the corpus size.
func (m *MemorySource) Len() int {
	return len(m.docs)
}

// stopWords are English function words left out of term sets; they would
// otherwise match nearly every document.
var stopWords = map[string]struct{}{
	"an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {},
	"to": {}, "was": {}, "which": {}, "with": {},
}

// termSet lowercases Latin words, drops stop words and splits Han runs into
// bigrams, since Chinese text carries no spaces.
func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	var word []rune
	var han []rune

	flushWord := func() {
		if len(word) > 1 {
			w := strings.ToLower(string(word))
			if _, stop := stopWords[w]; !stop {
				set[w] = struct{}{}
			}
		}
		word = word[:0]
	}
	flushHan := func() {
		switch {
		case len(han) == 1:
			set[string(han)] = struct{}{}
		case len(han) > 1:
			for i := 0; i+1 < len(han); i++ {
				set[string(han[i:i+2])] = struct{}{}
			}
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word = append(word, r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return set
}

// LoadCorpus reads reference documents from a .json, .yaml or .yml file
// holding a list of {id, title, text}.
func LoadCorpus(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var docs []Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &docs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &docs)
	default:
		return nil, fmt.Errorf("unsupported corpus extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", filepath.Base(path), err)
	}
	for i, d := range docs {
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("corpus entry %d: title is required", i)
		}
		if d.ID == "" {
			docs[i].ID = fmt.Sprintf("doc-%d", i+1)
		}
	}
	return docs, nil
}
