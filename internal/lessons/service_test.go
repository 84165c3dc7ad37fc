package lessons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/config"
	"github.com/lessond-dev/lessond/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		Content: config.ContentConfig{BaseURL: "http://localhost:8080"},
	}
	return NewService(db, cfg, zerolog.Nop())
}

func TestUpsertCreateUpdateSkip(t *testing.T) {
	svc := testService(t)

	params := UpsertParams{
		Slug:      "authorization",
		Track:     "python",
		Title:     "Authorization",
		Tags:      []string{"auth", "sessions"},
		Position:  4,
		Source:    "# Authorization\n\nBody.\n",
		Published: true,
	}

	lesson, changed, err := svc.Upsert(params)
	if err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if !changed {
		t.Error("Upsert() create reported no change")
	}
	if lesson.ID == "" {
		t.Error("Upsert() created lesson without an ID")
	}
	if lesson.HTML == "" {
		t.Error("Upsert() did not render HTML")
	}
	if lesson.Tags != "auth,sessions" {
		t.Errorf("lesson.Tags = %q, want %q", lesson.Tags, "auth,sessions")
	}

	// Identical re-upsert is a no-op
	_, changed, err = svc.Upsert(params)
	if err != nil {
		t.Fatalf("Upsert() repeat error = %v", err)
	}
	if changed {
		t.Error("Upsert() of identical content reported a change")
	}

	// Source change is an update with fresh render and checksum
	oldChecksum := lesson.Checksum
	params.Source = "# Authorization\n\nRevised body.\n"
	updated, changed, err := svc.Upsert(params)
	if err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if !changed {
		t.Error("Upsert() update reported no change")
	}
	if updated.ID != lesson.ID {
		t.Errorf("Upsert() update created a new row: %s != %s", updated.ID, lesson.ID)
	}
	if updated.Checksum == oldChecksum {
		t.Error("Upsert() update did not recompute the checksum")
	}
}

func TestListAndTracks(t *testing.T) {
	svc := testService(t)

	seed := []UpsertParams{
		{Slug: "authorization", Track: "python", Title: "Authorization", Position: 2, Source: "# A\n", Published: true},
		{Slug: "authentication", Track: "python", Title: "Authentication", Position: 1, Source: "# B\n", Published: true},
		{Slug: "authorization", Track: "ruby", Title: "Authorization", Position: 1, Source: "# A\n", Published: false},
	}
	for _, p := range seed {
		if _, _, err := svc.Upsert(p); err != nil {
			t.Fatalf("seed Upsert(%s/%s) error = %v", p.Track, p.Slug, err)
		}
	}

	all, err := svc.List("", false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d lessons, want 3", len(all))
	}

	python, err := svc.List("python", false)
	if err != nil {
		t.Fatalf("List(python) error = %v", err)
	}
	if len(python) != 2 {
		t.Fatalf("List(python) returned %d lessons, want 2", len(python))
	}
	// Teaching order: position ascending
	if python[0].Slug != "authentication" {
		t.Errorf("List(python)[0].Slug = %q, want %q", python[0].Slug, "authentication")
	}

	published, err := svc.List("ruby", true)
	if err != nil {
		t.Fatalf("List(ruby, published) error = %v", err)
	}
	if len(published) != 0 {
		t.Errorf("List(ruby, published) returned %d lessons, want 0", len(published))
	}

	tracks, err := svc.Tracks()
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(tracks) != 2 || tracks[0] != "python" || tracks[1] != "ruby" {
		t.Errorf("Tracks() = %v, want [python ruby]", tracks)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Get("python", "missing"); err != ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestImportDir(t *testing.T) {
	svc := testService(t)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFileName), `
title: Test Curriculum
default_track: python
tracks:
  - name: python
    lessons: [authentication, authorization]
  - name: ruby
    lessons: [authorization]
`)
	writeFile(t, filepath.Join(dir, "python", "authorization.md"), `---
title: Authorization
published: true
---

# Authorization

Body.
`)
	writeFile(t, filepath.Join(dir, "python", "authentication.md"), `---
title: Authentication
published: true
---

# Authentication
`)
	writeFile(t, filepath.Join(dir, "ruby", "authorization.md"), `---
title: Authorization
track: ruby
---

# Authorization
`)

	stats, err := svc.ImportDir(dir)
	if err != nil {
		t.Fatalf("ImportDir() error = %v", err)
	}
	if stats.Created != 3 || stats.Updated != 0 || stats.Errors != 0 {
		t.Fatalf("ImportDir() stats = %+v, want 3 created", stats)
	}

	// Manifest ordering wins over frontmatter position
	lesson, err := svc.Get("python", "authorization")
	if err != nil {
		t.Fatalf("Get() after import error = %v", err)
	}
	if lesson.Position != 2 {
		t.Errorf("lesson.Position = %d, want 2 (manifest order)", lesson.Position)
	}
	if !lesson.Published {
		t.Error("lesson.Published = false, want true from frontmatter")
	}

	// A second import of unchanged content skips everything
	stats, err = svc.ImportDir(dir)
	if err != nil {
		t.Fatalf("ImportDir() repeat error = %v", err)
	}
	if stats.Skipped != 3 || stats.Created != 0 || stats.Updated != 0 {
		t.Errorf("ImportDir() repeat stats = %+v, want 3 skipped", stats)
	}
}

func TestManifestPositionOf(t *testing.T) {
	m := &Manifest{
		Tracks: []TrackManifest{
			{Name: "python", Lessons: []string{"intro", "authorization"}},
		},
	}

	if pos, ok := m.PositionOf("python", "authorization"); !ok || pos != 2 {
		t.Errorf("PositionOf(python, authorization) = %d, %v; want 2, true", pos, ok)
	}
	if _, ok := m.PositionOf("python", "missing"); ok {
		t.Error("PositionOf(python, missing) = true, want false")
	}
	if _, ok := m.PositionOf("ruby", "authorization"); ok {
		t.Error("PositionOf(ruby, authorization) = true, want false")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
