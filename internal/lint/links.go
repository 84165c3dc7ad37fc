package lint

import (
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// Index holds the curriculum as seen by the link checker. Internal links
// must resolve against it; external links are not dialed.
type Index struct {
	renderer *markdown.Renderer
	baseURL  string
	entries  map[string]map[string]*indexEntry // track -> slug -> entry
}

type indexEntry struct {
	doc     Document
	anchors map[string]struct{} // computed on first use
}

// NewIndex builds a link-resolution index over the given documents. baseURL
// is the public base URL of the deployment; absolute links under it are
// treated as internal.
func NewIndex(renderer *markdown.Renderer, baseURL string, docs []Document) *Index {
	ix := &Index{
		renderer: renderer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		entries:  make(map[string]map[string]*indexEntry),
	}
	for _, doc := range docs {
		track := ix.entries[doc.Track]
		if track == nil {
			track = make(map[string]*indexEntry)
			ix.entries[doc.Track] = track
		}
		track[doc.Slug] = &indexEntry{doc: doc}
	}
	return ix
}

func (ix *Index) lookup(track, slug string) *indexEntry {
	if byTrack, ok := ix.entries[track]; ok {
		return byTrack[slug]
	}
	return nil
}

func (ix *Index) anchorsOf(entry *indexEntry) map[string]struct{} {
	if entry.anchors == nil {
		entry.anchors = ix.renderer.Anchors(entry.doc.Source)
	}
	return entry.anchors
}

// checkLinks verifies every internal link in doc resolves: anchor links to a
// heading in the same document, lesson links to a known slug in the same
// track (and, with a fragment, to a heading in the target). External links
// are only checked for well-formedness.
func checkLinks(r *markdown.Renderer, ix *Index, doc Document) []Finding {
	var findings []Finding

	_ = ast.Walk(r.Parse(doc.Source), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := string(link.Destination)
		line := nodeLine(n, doc.Source)

		if f := ix.checkDestination(doc, dest, line); f != nil {
			findings = append(findings, *f)
		}
		return ast.WalkContinue, nil
	})

	return findings
}

func (ix *Index) checkDestination(doc Document, dest string, line int) *Finding {
	if dest == "" {
		f := finding(CheckLinks, SeverityError, doc, line, "empty link destination")
		return &f
	}

	// In-document anchor
	if strings.HasPrefix(dest, "#") {
		return ix.checkAnchor(doc, doc.Track, doc.Slug, strings.TrimPrefix(dest, "#"), line)
	}

	u, err := url.Parse(dest)
	if err != nil {
		f := finding(CheckLinks, SeverityError, doc, line, "malformed link %q: %v", dest, err)
		return &f
	}

	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		// Absolute links under our own base URL are internal lesson links
		if ix.baseURL != "" && strings.HasPrefix(dest, ix.baseURL+"/") {
			return ix.checkLessonPath(doc, strings.TrimPrefix(dest, ix.baseURL+"/"), u.Fragment, line)
		}
		return nil // external, not dialed
	case u.Scheme != "":
		return nil // mailto: and friends
	}

	// Relative link to a sibling lesson
	return ix.checkLessonPath(doc, u.Path, u.Fragment, line)
}

// checkLessonPath resolves a relative or base-URL-stripped path like
// "defining-routes.md", "./defining-routes", or "lessons/python/defining-routes".
func (ix *Index) checkLessonPath(doc Document, rel, fragment string, line int) *Finding {
	rel = strings.TrimSuffix(strings.TrimPrefix(rel, "./"), "/")
	if rel == "" {
		if fragment != "" {
			return ix.checkAnchor(doc, doc.Track, doc.Slug, fragment, line)
		}
		return nil
	}

	track := doc.Track
	slug := strings.TrimSuffix(path.Base(rel), ".md")

	// Paths of the form lessons/<track>/<slug> address another track explicitly
	if parts := strings.Split(rel, "/"); len(parts) == 3 && parts[0] == "lessons" {
		track, slug = parts[1], strings.TrimSuffix(parts[2], ".md")
	}

	entry := ix.lookup(track, slug)
	if entry == nil {
		f := finding(CheckLinks, SeverityError, doc, line,
			"link target %q does not resolve to a lesson in track %q", rel, track)
		return &f
	}

	if fragment != "" {
		return ix.checkAnchor(doc, track, slug, fragment, line)
	}
	return nil
}

func (ix *Index) checkAnchor(doc Document, track, slug, anchor string, line int) *Finding {
	entry := ix.lookup(track, slug)
	if entry == nil {
		f := finding(CheckLinks, SeverityError, doc, line,
			"anchor link target lesson %s/%s not found", track, slug)
		return &f
	}
	if _, ok := ix.anchorsOf(entry)[anchor]; !ok {
		f := finding(CheckLinks, SeverityError, doc, line,
			"anchor #%s not found in %s/%s", anchor, track, slug)
		return &f
	}
	return nil
}

// nodeLine walks up from an inline node to the nearest block with line
// information.
func nodeLine(n ast.Node, source []byte) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == ast.TypeBlock && cur.Lines().Len() > 0 {
			return markdown.LineOf(source, cur.Lines().At(0).Start)
		}
	}
	return 0
}
