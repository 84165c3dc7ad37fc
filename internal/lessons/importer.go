package lessons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// ImportStats summarizes one content directory import
type ImportStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"` // Unchanged since the last import
	Errors  int `json:"errors"`
}

// ImportDir walks a content directory shaped as <dir>/<track>/<slug>.md and
// upserts every lesson it finds. A curriculum.yaml manifest at the root, if
// present, supplies lesson ordering; frontmatter in each file supplies the
// rest of the metadata. Files that fail to parse are logged and counted but
// do not abort the import.
func (s *Service) ImportDir(dir string) (ImportStats, error) {
	var stats ImportStats

	var manifest *Manifest
	manifestPath := filepath.Join(dir, ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err = LoadManifest(manifestPath)
		if err != nil {
			return stats, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read content dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		track := entry.Name()

		trackDir := filepath.Join(dir, track)
		files, err := os.ReadDir(trackDir)
		if err != nil {
			return stats, fmt.Errorf("failed to read track dir %s: %w", track, err)
		}

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
				continue
			}
			if err := s.importFile(filepath.Join(trackDir, file.Name()), track, manifest, &stats); err != nil {
				s.logger.Error().Err(err).
					Str("track", track).
					Str("file", file.Name()).
					Msg("Failed to import lesson file")
				stats.Errors++
			}
		}
	}

	s.logger.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Msg("Content import finished")

	return stats, nil
}

func (s *Service) importFile(path, track string, manifest *Manifest, stats *ImportStats) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Path-derived defaults for files with sparse frontmatter
	slug := meta.Slug
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if meta.Track != "" {
		track = meta.Track
	}
	title := meta.Title
	if title == "" {
		title = slug
	}

	position := meta.Position
	if manifest != nil {
		if p, ok := manifest.PositionOf(track, slug); ok {
			position = p
		}
	}

	_, getErr := s.Get(track, slug)
	existed := getErr == nil

	_, changed, err := s.Upsert(UpsertParams{
		Slug:        slug,
		Track:       track,
		Title:       title,
		Summary:     meta.Summary,
		Tags:        meta.Tags,
		Position:    position,
		Source:      string(body),
		MembersOnly: meta.MembersOnly,
		Published:   meta.Published,
	})
	if err != nil {
		return err
	}

	switch {
	case !changed:
		stats.Skipped++
	case existed:
		stats.Updated++
	default:
		stats.Created++
	}
	return nil
}
