package markdown

import (
	"strings"
	"testing"
)

func TestRenderPreservesContract(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "heading hierarchy with auto IDs",
			source: "# Authorization\n\n## Key Vocab\n",
			want:   []string{`<h1 id="authorization">`, `<h2 id="key-vocab">`},
		},
		{
			name:   "fenced code block keeps language tag",
			source: "```go\nfunc main() {}\n```\n",
			want:   []string{`<pre><code class="language-go">`},
		},
		{
			name:   "details disclosure block passes through",
			source: "<details>\n<summary>What is a session?</summary>\nServer-side login state.\n</details>\n",
			want:   []string{"<details>", "<summary>What is a session?</summary>", "</details>"},
		},
		{
			name:   "gfm table renders",
			source: "| Term | Meaning |\n| --- | --- |\n| Session | login state |\n",
			want:   []string{"<table>", "<td>Session</td>"},
		},
	}

	r := NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render([]byte(tt.source))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(string(got), want) {
					t.Errorf("Render() output missing %q\ngot: %s", want, got)
				}
			}
		})
	}
}

func TestOutline(t *testing.T) {
	source := []byte("# Authorization\n\nintro\n\n## First Pass\n\ntext\n\n## Conclusion\n")

	r := NewRenderer()
	outline := r.Outline(source)

	if len(outline) != 3 {
		t.Fatalf("Outline() returned %d headings, want 3", len(outline))
	}
	if outline[0].Level != 1 || outline[0].Text != "Authorization" {
		t.Errorf("outline[0] = %+v, want level 1 %q", outline[0], "Authorization")
	}
	if outline[1].Anchor != "first-pass" {
		t.Errorf("outline[1].Anchor = %q, want %q", outline[1].Anchor, "first-pass")
	}
	if outline[2].Line == 0 {
		t.Error("outline[2].Line = 0, want a line number")
	}
}

func TestAnchors(t *testing.T) {
	r := NewRenderer()
	anchors := r.Anchors([]byte("# Intro\n\n## Check for Understanding\n"))

	for _, want := range []string{"intro", "check-for-understanding"} {
		if _, ok := anchors[want]; !ok {
			t.Errorf("Anchors() missing %q", want)
		}
	}
}

func TestLineOf(t *testing.T) {
	source := []byte("one\ntwo\nthree\n")
	tests := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{3, 1},
		{4, 2},
		{8, 3},
		{100, 4}, // past the end clamps
	}
	for _, tt := range tests {
		if got := LineOf(source, tt.offset); got != tt.want {
			t.Errorf("LineOf(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
