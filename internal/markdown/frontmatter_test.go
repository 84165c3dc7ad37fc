package markdown

import (
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	source := `---
title: Authorization
slug: authorization
track: python
tags: [auth, sessions]
position: 4
members_only: true
published: true
---

# Authorization

Body text.
`

	meta, body, err := ParseFrontMatter([]byte(source))
	if err != nil {
		t.Fatalf("ParseFrontMatter() error = %v", err)
	}

	if meta.Title != "Authorization" {
		t.Errorf("meta.Title = %q, want %q", meta.Title, "Authorization")
	}
	if meta.Track != "python" {
		t.Errorf("meta.Track = %q, want %q", meta.Track, "python")
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "auth" {
		t.Errorf("meta.Tags = %v, want [auth sessions]", meta.Tags)
	}
	if meta.Position != 4 {
		t.Errorf("meta.Position = %d, want 4", meta.Position)
	}
	if !meta.MembersOnly || !meta.Published {
		t.Errorf("meta flags = %+v, want members_only and published true", meta)
	}

	if strings.Contains(string(body), "---") {
		t.Errorf("body still contains frontmatter delimiters: %s", body)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(body)), "# Authorization") {
		t.Errorf("body = %q, want it to start with the heading", body)
	}
}

func TestParseFrontMatterWithoutFrontmatter(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte("# Plain lesson\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter() error = %v", err)
	}
	if meta.Title != "" {
		t.Errorf("meta.Title = %q, want empty", meta.Title)
	}
	if string(body) != "# Plain lesson\n" {
		t.Errorf("body = %q, want source unchanged", body)
	}
}
