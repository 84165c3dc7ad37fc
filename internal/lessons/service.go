// Package lessons holds the service layer over the lessons table: queries
// used by the handlers, write paths that keep the rendered HTML cache and
// checksum in step with the source, and the content directory importer.
package lessons

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/config"
	"github.com/lessond-dev/lessond/internal/lint"
	"github.com/lessond-dev/lessond/internal/markdown"
	"github.com/lessond-dev/lessond/internal/models"
)

var ErrNotFound = errors.New("lesson not found")

type Service struct {
	db       *gorm.DB
	config   *config.Config
	logger   zerolog.Logger
	renderer *markdown.Renderer
}

// NewService creates a lessons service
func NewService(db *gorm.DB, cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		logger:   logger,
		renderer: markdown.NewRenderer(),
	}
}

// List returns lessons, optionally restricted to one track and to published
// entries only, in teaching order.
func (s *Service) List(track string, publishedOnly bool) ([]models.Lesson, error) {
	query := s.db.Order("track, position, slug")
	if track != "" {
		query = query.Where("track = ?", track)
	}
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var lessons []models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// Get returns one lesson copy by track and slug
func (s *Service) Get(track, slug string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.Where("track = ? AND slug = ?", track, slug).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}
	return &lesson, nil
}

// Tracks returns the distinct track names present in the lessons table
func (s *Service) Tracks() ([]string, error) {
	var tracks []string
	err := s.db.Model(&models.Lesson{}).
		Distinct("track").
		Order("track").
		Pluck("track", &tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

// UpsertParams carries one lesson copy to create or update
type UpsertParams struct {
	Slug        string
	Track       string
	Title       string
	Summary     string
	Tags        []string
	Position    int
	Source      string // Markdown body, frontmatter already stripped
	MembersOnly bool
	Published   bool
	AuthorID    string
}

// Upsert creates or updates one lesson copy keyed by slug+track. Writes
// re-render the HTML cache and recompute the checksum; an update whose
// source and metadata are unchanged is skipped. Returns the lesson and
// whether anything was written.
func (s *Service) Upsert(params UpsertParams) (*models.Lesson, bool, error) {
	html, err := s.renderer.Render([]byte(params.Source))
	if err != nil {
		return nil, false, fmt.Errorf("failed to render lesson %s/%s: %w", params.Track, params.Slug, err)
	}
	checksum := models.Checksum(params.Source)
	tags := strings.Join(params.Tags, ",")

	var lesson models.Lesson
	err = s.db.Where("track = ? AND slug = ?", params.Track, params.Slug).First(&lesson).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		lesson = models.Lesson{
			Slug:        params.Slug,
			Track:       params.Track,
			Title:       params.Title,
			Summary:     params.Summary,
			Tags:        tags,
			Position:    params.Position,
			Source:      params.Source,
			HTML:        string(html),
			MembersOnly: params.MembersOnly,
			Published:   params.Published,
			AuthorID:    params.AuthorID,
			Checksum:    checksum,
		}
		if err := s.db.Create(&lesson).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create lesson %s/%s: %w", params.Track, params.Slug, err)
		}
		s.logger.Info().Str("track", params.Track).Str("slug", params.Slug).Msg("Lesson created")
		return &lesson, true, nil

	case err != nil:
		return nil, false, fmt.Errorf("failed to load lesson %s/%s: %w", params.Track, params.Slug, err)
	}

	// Checksum short-circuit: a re-import of identical content is a no-op
	if lesson.Checksum == checksum &&
		lesson.Title == params.Title &&
		lesson.Summary == params.Summary &&
		lesson.Tags == tags &&
		lesson.Position == params.Position &&
		lesson.MembersOnly == params.MembersOnly &&
		lesson.Published == params.Published {
		return &lesson, false, nil
	}

	lesson.Title = params.Title
	lesson.Summary = params.Summary
	lesson.Tags = tags
	lesson.Position = params.Position
	lesson.Source = params.Source
	lesson.HTML = string(html)
	lesson.MembersOnly = params.MembersOnly
	lesson.Published = params.Published
	lesson.Checksum = checksum

	if err := s.db.Save(&lesson).Error; err != nil {
		return nil, false, fmt.Errorf("failed to update lesson %s/%s: %w", params.Track, params.Slug, err)
	}
	s.logger.Info().Str("track", params.Track).Str("slug", params.Slug).Msg("Lesson updated")
	return &lesson, true, nil
}

// Documents loads every lesson as a lint document
func (s *Service) Documents() ([]lint.Document, error) {
	lessons, err := s.List("", false)
	if err != nil {
		return nil, err
	}

	docs := make([]lint.Document, len(lessons))
	for i, l := range lessons {
		docs[i] = lint.Document{
			Slug:   l.Slug,
			Track:  l.Track,
			Title:  l.Title,
			Source: []byte(l.Source),
		}
	}
	return docs, nil
}

// Document converts one lesson record to a lint document
func Document(l *models.Lesson) lint.Document {
	return lint.Document{
		Slug:   l.Slug,
		Track:  l.Track,
		Title:  l.Title,
		Source: []byte(l.Source),
	}
}
