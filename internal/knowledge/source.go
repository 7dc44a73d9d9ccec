package knowledge

import "context"

// Record is one reference returned by a knowledge source.
type Record struct {
	ID         string  `json:"id" yaml:"id"`
	Title      string  `json:"title" yaml:"title"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Snippet    string  `json:"snippet" yaml:"snippet"`
}

// Source looks up references related to a query, most similar first.
// At most k records are returned.
type Source interface {
	Search(ctx context.Context, query string, k int) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, query string, k int) ([]Record, error)

func (f SourceFunc) Search(ctx context.Context, query string, k int) ([]Record, error) {
	return f(ctx, query, k)
}
