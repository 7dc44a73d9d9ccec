package generate

import (
	"context"
	"fmt"
)

// Request describes one section to write.
type Request struct {
	NodeID    string
	Title     string
	Guideline string
	// Breadcrumb holds ancestor section titles, root first. Read-only context.
	Breadcrumb []string
}

// Generator produces section text from a guideline.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// TemplateGenerator fills sections with deterministic placeholder drafts
// derived from the node identity and guideline. It is used when no LLM is
// configured.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[Draft content for '%s' (ID: %s). Guideline: '%s'.]", req.Title, req.NodeID, req.Guideline), nil
}
