package lint

import (
	"github.com/yuin/goldmark/ast"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// knownFenceLanguages are the language tags the curriculum's syntax
// highlighter supports. Anything else will render as plain text, which is
// almost always an authoring mistake (e.g. "pyhton").
var knownFenceLanguages = map[string]bool{
	"py":         true,
	"python":     true,
	"rb":         true,
	"ruby":       true,
	"go":         true,
	"js":         true,
	"javascript": true,
	"ts":         true,
	"typescript": true,
	"sql":        true,
	"json":       true,
	"yaml":       true,
	"yml":        true,
	"html":       true,
	"css":        true,
	"bash":       true,
	"sh":         true,
	"shell":      true,
	"console":    true,
	"text":       true,
	"txt":        true,
}

// checkFences verifies every fenced code block carries a known language tag
// and is not empty.
func checkFences(r *markdown.Renderer, doc Document) []Finding {
	var findings []Finding

	_ = ast.Walk(r.Parse(doc.Source), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		line := 0
		if fence.Lines().Len() > 0 {
			line = markdown.LineOf(doc.Source, fence.Lines().At(0).Start)
		} else if fence.Info != nil {
			line = markdown.LineOf(doc.Source, fence.Info.Segment.Start)
		}

		lang := string(fence.Language(doc.Source))
		switch {
		case lang == "":
			findings = append(findings, finding(CheckFences, SeverityWarning, doc, line,
				"fenced code block has no language tag"))
		case !knownFenceLanguages[lang]:
			findings = append(findings, finding(CheckFences, SeverityWarning, doc, line,
				"unknown fence language %q", lang))
		}

		if fence.Lines().Len() == 0 {
			findings = append(findings, finding(CheckFences, SeverityWarning, doc, line,
				"empty fenced code block"))
		}

		return ast.WalkSkipChildren, nil
	})

	return findings
}
