package lint

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// Runner runs the QA checks over one lesson or the whole curriculum
type Runner struct {
	renderer *markdown.Renderer
	baseURL  string
	logger   zerolog.Logger
}

// NewRunner creates a lint runner. baseURL is used by the link checker to
// recognize absolute internal links.
func NewRunner(baseURL string, logger zerolog.Logger) *Runner {
	return &Runner{
		renderer: markdown.NewRenderer(),
		baseURL:  baseURL,
		logger:   logger,
	}
}

// LintLesson checks a single lesson copy. curriculum provides the link
// resolution targets and must include doc itself.
func (r *Runner) LintLesson(doc Document, curriculum []Document) []Finding {
	ix := NewIndex(r.renderer, r.baseURL, curriculum)

	var findings []Finding
	findings = append(findings, checkFences(r.renderer, doc)...)
	findings = append(findings, checkDisclosures(doc)...)
	findings = append(findings, checkLinks(r.renderer, ix, doc)...)

	r.logger.Debug().
		Str("track", doc.Track).
		Str("slug", doc.Slug).
		Int("findings", len(findings)).
		Msg("Lesson lint finished")

	return findings
}

// LintCurriculum runs the per-lesson checks over every document and the
// variant consistency check over every slug that exists in more than one
// track.
func (r *Runner) LintCurriculum(docs []Document) []Finding {
	ix := NewIndex(r.renderer, r.baseURL, docs)

	var findings []Finding
	for _, doc := range docs {
		findings = append(findings, checkFences(r.renderer, doc)...)
		findings = append(findings, checkDisclosures(doc)...)
		findings = append(findings, checkLinks(r.renderer, ix, doc)...)
	}

	bySlug := make(map[string][]Document)
	for _, doc := range docs {
		bySlug[doc.Slug] = append(bySlug[doc.Slug], doc)
	}

	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		findings = append(findings, checkVariants(r.renderer, bySlug[slug])...)
	}

	r.logger.Debug().
		Int("documents", len(docs)).
		Int("findings", len(findings)).
		Msg("Curriculum lint finished")

	return findings
}
