package markdown

import (
	"github.com/yuin/goldmark/ast"
)

// Heading is one entry in a document outline
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"` // Auto-generated heading ID, matches rendered output
	Line   int    `json:"line"`
}

// Outline extracts the heading hierarchy from a lesson. It is used to build
// tables of contents, to resolve in-document anchor links, and to compare
// per-track copies of the same lesson for drift.
func (r *Renderer) Outline(source []byte) []Heading {
	doc := r.Parse(source)
	var outline []Heading

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		anchor := ""
		if id, found := h.AttributeString("id"); found {
			if b, ok := id.([]byte); ok {
				anchor = string(b)
			}
		}

		line := 0
		if h.Lines().Len() > 0 {
			line = LineOf(source, h.Lines().At(0).Start)
		}

		outline = append(outline, Heading{
			Level:  h.Level,
			Text:   string(h.Text(source)),
			Anchor: anchor,
			Line:   line,
		})
		return ast.WalkSkipChildren, nil
	})

	return outline
}

// Anchors returns the set of heading anchors in source, for anchor-link
// resolution.
func (r *Renderer) Anchors(source []byte) map[string]struct{} {
	anchors := make(map[string]struct{})
	for _, h := range r.Outline(source) {
		if h.Anchor != "" {
			anchors[h.Anchor] = struct{}{}
		}
	}
	return anchors
}
