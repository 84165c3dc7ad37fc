package lessons

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is looked for at the root of the content directory
const ManifestFileName = "curriculum.yaml"

// Manifest describes the curriculum layout: which tracks exist and the
// lesson ordering within each. Lessons missing from the manifest keep the
// position from their frontmatter.
type Manifest struct {
	Title        string          `yaml:"title"`
	DefaultTrack string          `yaml:"default_track"`
	Tracks       []TrackManifest `yaml:"tracks"`
}

// TrackManifest lists one track's lesson slugs in teaching order
type TrackManifest struct {
	Name    string   `yaml:"name"`
	Lessons []string `yaml:"lessons"`
}

// LoadManifest reads and parses a curriculum.yaml file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// TrackNames returns the declared track names in manifest order
func (m *Manifest) TrackNames() []string {
	names := make([]string, 0, len(m.Tracks))
	for _, t := range m.Tracks {
		names = append(names, t.Name)
	}
	return names
}

// PositionOf returns the 1-based teaching position of a slug within a track,
// or false if the manifest does not list it.
func (m *Manifest) PositionOf(track, slug string) (int, bool) {
	for _, t := range m.Tracks {
		if t.Name != track {
			continue
		}
		for i, s := range t.Lessons {
			if s == slug {
				return i + 1, true
			}
		}
	}
	return 0, false
}
