package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config represents the global configuration for the single-tenant deployment
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first setup (64 hex chars)

	// Site configuration
	SiteTitle    string `json:"site_title" gorm:"not null;default:'Curriculum'"`
	DefaultTrack string `json:"default_track" gorm:"not null;default:'python'"` // Track served when none is requested

	// Lint configuration (for periodic curriculum QA runs)
	LintSchedule string     `json:"lint_schedule"`  // Cron expression, e.g. "0 2 * * *" (2am daily), empty = no scheduled lint
	LastLintedAt *time.Time `json:"last_linted_at"` // When the last curriculum lint finished
	NextLintAt   *time.Time `json:"next_lint_at"`   // Calculated from cron schedule
}

// User represents a local user account (self-hosted, no external auth)
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Lesson represents one copy of a curriculum lesson. The same lesson may
// exist in several tracks (e.g. a Python and a Ruby framing) sharing a slug;
// slug+track is unique.
type Lesson struct {
	BaseModel
	Slug  string `json:"slug" gorm:"not null;uniqueIndex:idx_lessons_slug_track"`
	Track string `json:"track" gorm:"not null;uniqueIndex:idx_lessons_slug_track"`

	Title    string `json:"title" gorm:"not null"`
	Summary  string `json:"summary"`
	Tags     string `json:"tags"`                       // Comma-separated, see TagList
	Position int    `json:"position" gorm:"default:0"`  // Ordering within a track

	Source string `json:"source" gorm:"type:text;not null"` // Markdown body, frontmatter stripped
	HTML   string `json:"-" gorm:"type:text"`               // Rendered cache, rebuilt on write

	MembersOnly bool   `json:"members_only" gorm:"not null;default:false"` // Requires a session to read
	Published   bool   `json:"published" gorm:"not null;default:false"`
	AuthorID    string `json:"author_id"`
	Checksum    string `json:"checksum" gorm:"type:varchar(64)"` // sha256 of Source, used to skip no-op imports

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:SET NULL"`
}

// TagList splits the comma-separated Tags field
func (l *Lesson) TagList() []string {
	if l.Tags == "" {
		return nil
	}
	parts := strings.Split(l.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Checksum computes the sha256 hex digest used for Lesson.Checksum
func Checksum(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lint report status values
const (
	LintStatusPending  = "pending"
	LintStatusClean    = "clean"
	LintStatusFindings = "findings"
	LintStatusError    = "error"
)

// Lint report scope values
const (
	LintScopeLesson     = "lesson"
	LintScopeCurriculum = "curriculum"
)

// LintReport records one QA run over a single lesson or the whole curriculum
type LintReport struct {
	BaseModel
	Scope    string  `json:"scope" gorm:"not null"`              // "lesson" or "curriculum"
	LessonID *string `json:"lesson_id" gorm:"index"`             // nil for curriculum runs
	Status   string  `json:"status" gorm:"not null;default:'pending'"`

	Findings     string `json:"-" gorm:"type:text"` // JSON-encoded []lint.Finding
	FindingCount int    `json:"finding_count" gorm:"not null;default:0"`
	ErrorMessage string `json:"error_message,omitempty"`

	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	// Relationships
	Lesson *Lesson `json:"lesson,omitempty" gorm:"foreignKey:LessonID;references:ID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Config{}, &Lesson{}, &LintReport{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
