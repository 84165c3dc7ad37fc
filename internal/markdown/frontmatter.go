package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Meta is the YAML frontmatter carried at the top of every lesson source
// file. Slug and Track may be omitted, in which case the importer derives
// them from the file path.
type Meta struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Track       string   `yaml:"track"`
	Summary     string   `yaml:"summary"`
	Tags        []string `yaml:"tags"`
	Position    int      `yaml:"position"`
	MembersOnly bool     `yaml:"members_only"`
	Published   bool     `yaml:"published"`
	Author      string   `yaml:"author"`
}

// ParseFrontMatter extracts lesson metadata and the Markdown body from the
// provided source bytes. The returned body has the frontmatter delimiters
// stripped. Sources without frontmatter are valid; Meta is zero-valued then.
func ParseFrontMatter(source []byte) (Meta, []byte, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}
