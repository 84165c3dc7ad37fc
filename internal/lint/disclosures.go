package lint

import (
	"regexp"
	"sort"

	"github.com/lessond-dev/lessond/internal/markdown"
)

var disclosureTagRe = regexp.MustCompile(`(?i)</?(details|summary)[^>]*>`)

type disclosureTag struct {
	name    string // "details" or "summary"
	closing bool
	line    int
}

// checkDisclosures verifies the FAQ disclosure widgets are well formed:
// every <details> is closed, contains a <summary>, and summaries are
// balanced. The lesson renderer passes these through as raw HTML, so a
// malformed block silently swallows the rest of the page.
func checkDisclosures(doc Document) []Finding {
	tags := scanDisclosureTags(doc.Source)

	var findings []Finding
	type openDetails struct {
		line       int
		hasSummary bool
	}
	var stack []openDetails
	summaryOpenLine := 0

	for _, tag := range tags {
		switch {
		case tag.name == "details" && !tag.closing:
			stack = append(stack, openDetails{line: tag.line})

		case tag.name == "details" && tag.closing:
			if len(stack) == 0 {
				findings = append(findings, finding(CheckDisclosures, SeverityError, doc, tag.line,
					"</details> without a matching <details>"))
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !top.hasSummary {
				findings = append(findings, finding(CheckDisclosures, SeverityError, doc, top.line,
					"<details> block has no <summary>"))
			}

		case tag.name == "summary" && !tag.closing:
			if len(stack) == 0 {
				findings = append(findings, finding(CheckDisclosures, SeverityWarning, doc, tag.line,
					"<summary> outside a <details> block"))
				continue
			}
			stack[len(stack)-1].hasSummary = true
			summaryOpenLine = tag.line

		case tag.name == "summary" && tag.closing:
			if summaryOpenLine == 0 {
				findings = append(findings, finding(CheckDisclosures, SeverityError, doc, tag.line,
					"</summary> without a matching <summary>"))
				continue
			}
			summaryOpenLine = 0
		}
	}

	for _, open := range stack {
		findings = append(findings, finding(CheckDisclosures, SeverityError, doc, open.line,
			"unclosed <details> block"))
	}
	if summaryOpenLine != 0 {
		findings = append(findings, finding(CheckDisclosures, SeverityError, doc, summaryOpenLine,
			"unclosed <summary>"))
	}

	return findings
}

func scanDisclosureTags(source []byte) []disclosureTag {
	matches := disclosureTagRe.FindAllIndex(source, -1)
	tags := make([]disclosureTag, 0, len(matches))

	for _, m := range matches {
		raw := source[m[0]:m[1]]
		closing := raw[1] == '/'
		name := "details"
		// Tag name starts after "<" or "</"
		start := 1
		if closing {
			start = 2
		}
		if raw[start] == 's' || raw[start] == 'S' {
			name = "summary"
		}
		tags = append(tags, disclosureTag{
			name:    name,
			closing: closing,
			line:    markdown.LineOf(source, m[0]),
		})
	}

	sort.SliceStable(tags, func(i, j int) bool { return tags[i].line < tags[j].line })
	return tags
}
