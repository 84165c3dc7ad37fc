// Package markdown wraps the goldmark engine used for lesson rendering and
// exposes the parsed AST to the lint checks.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer converts lesson Markdown into HTML. It is stateless and safe to
// share across requests.
//
// Raw HTML passthrough is deliberate: lessons use <details>/<summary>
// disclosure blocks for their FAQ sections, and those must survive rendering
// verbatim. Heading IDs are auto-generated so in-document anchor links
// resolve.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer constructs a renderer with the curriculum defaults (GFM,
// auto heading IDs, raw HTML allowed).
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.TaskList,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts Markdown source into HTML
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse returns the document AST for the given source. The lint checks walk
// this tree; the same parser configuration as Render is used so heading IDs
// match the rendered output.
func (r *Renderer) Parse(source []byte) ast.Node {
	return r.engine.Parser().Parse(text.NewReader(source))
}

// LineOf returns the 1-based line number of the given byte offset in source.
// Used to attach line positions to lint findings.
func LineOf(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
