package lint

import (
	"sort"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// checkVariants compares the per-track copies of one lesson slug. The
// curriculum keeps near-identical framings of the same lesson (e.g. a
// Python and a Ruby copy); drift between their titles or heading outlines
// is reported as a warning, since tracks legitimately diverge in wording.
// The lexically first track is the reference copy.
func checkVariants(r *markdown.Renderer, docs []Document) []Finding {
	if len(docs) < 2 {
		return nil
	}

	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Track < sorted[j].Track })

	ref := sorted[0]
	refOutline := r.Outline(ref.Source)

	var findings []Finding
	for _, doc := range sorted[1:] {
		if doc.Title != ref.Title {
			findings = append(findings, finding(CheckVariants, SeverityWarning, doc, 0,
				"title %q differs from track %q title %q", doc.Title, ref.Track, ref.Title))
		}

		outline := r.Outline(doc.Source)
		if len(outline) != len(refOutline) {
			findings = append(findings, finding(CheckVariants, SeverityWarning, doc, 0,
				"%d headings, track %q has %d", len(outline), ref.Track, len(refOutline)))
			continue
		}

		for i, h := range outline {
			refH := refOutline[i]
			if h.Level != refH.Level || h.Text != refH.Text {
				findings = append(findings, finding(CheckVariants, SeverityWarning, doc, h.Line,
					"heading %q (level %d) differs from track %q heading %q (level %d)",
					h.Text, h.Level, ref.Track, refH.Text, refH.Level))
			}
		}
	}

	return findings
}
