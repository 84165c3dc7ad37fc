package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lessond-dev/lessond/internal/cli/client"
)

// mockPushClient simulates the API client for pushing lessons
type mockPushClient struct {
	existing map[string]bool // "track/slug" -> exists
	created  []client.LessonPayload
	updated  []client.LessonPayload
}

func (m *mockPushClient) GetLesson(serverURL, track, slug string) (*client.Lesson, error) {
	if m.existing[track+"/"+slug] {
		return &client.Lesson{Track: track, Slug: slug}, nil
	}
	return nil, fmt.Errorf("request failed (status 404): %w", client.ErrNotFound)
}

func (m *mockPushClient) CreateLesson(serverURL string, payload client.LessonPayload) (*client.Lesson, error) {
	m.created = append(m.created, payload)
	return &client.Lesson{Track: payload.Track, Slug: payload.Slug}, nil
}

func (m *mockPushClient) UpdateLesson(serverURL, track, slug string, payload client.LessonPayload) (*client.Lesson, error) {
	m.updated = append(m.updated, payload)
	return &client.Lesson{Track: track, Slug: slug}, nil
}

func writeLessonFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write lesson file: %v", err)
	}
	return path
}

const pushLessonSource = `---
title: Pre-Request Guards
track: python
summary: Run one check before every handler
tags: [authorization]
position: 3
published: true
---

# Pre-Request Guards

Body text.
`

func TestPushCommand_CreatesNewLesson(t *testing.T) {
	tempDir := t.TempDir()
	path := writeLessonFile(t, tempDir, "pre-request-guards.md", pushLessonSource)

	mockAPI := &mockPushClient{existing: map[string]bool{}}
	var output bytes.Buffer

	err := runPush([]string{path},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
	)
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if len(mockAPI.created) != 1 {
		t.Fatalf("expected 1 created lesson, got %d", len(mockAPI.created))
	}
	if len(mockAPI.updated) != 0 {
		t.Fatalf("expected no updates, got %d", len(mockAPI.updated))
	}

	payload := mockAPI.created[0]
	if payload.Slug != "pre-request-guards" {
		t.Errorf("expected slug derived from file name, got %q", payload.Slug)
	}
	if payload.Track != "python" {
		t.Errorf("expected track from frontmatter, got %q", payload.Track)
	}
	if payload.Position != 3 {
		t.Errorf("expected position 3, got %d", payload.Position)
	}
	if strings.Contains(payload.Source, "---") {
		t.Error("expected frontmatter to be stripped from source")
	}
	if !strings.Contains(payload.Source, "# Pre-Request Guards") {
		t.Error("expected body to survive frontmatter stripping")
	}

	if !strings.Contains(output.String(), "Created python/pre-request-guards") {
		t.Errorf("expected creation message, got: %s", output.String())
	}
}

func TestPushCommand_UpdatesExistingLesson(t *testing.T) {
	tempDir := t.TempDir()
	path := writeLessonFile(t, tempDir, "pre-request-guards.md", pushLessonSource)

	mockAPI := &mockPushClient{
		existing: map[string]bool{"python/pre-request-guards": true},
	}
	var output bytes.Buffer

	err := runPush([]string{path},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
	)
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if len(mockAPI.updated) != 1 {
		t.Fatalf("expected 1 updated lesson, got %d", len(mockAPI.updated))
	}
	if len(mockAPI.created) != 0 {
		t.Fatalf("expected no creations, got %d", len(mockAPI.created))
	}

	if !strings.Contains(output.String(), "Updated python/pre-request-guards") {
		t.Errorf("expected update message, got: %s", output.String())
	}
}

func TestPushCommand_TrackFromDirectory(t *testing.T) {
	tempDir := t.TempDir()
	source := "---\ntitle: Guards\npublished: true\n---\n\n# Guards\n"
	path := writeLessonFile(t, tempDir, filepath.Join("ruby", "guards.md"), source)

	mockAPI := &mockPushClient{existing: map[string]bool{}}
	var output bytes.Buffer

	err := runPush([]string{path},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
	)
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if len(mockAPI.created) != 1 {
		t.Fatalf("expected 1 created lesson, got %d", len(mockAPI.created))
	}
	if mockAPI.created[0].Track != "ruby" {
		t.Errorf("expected track from parent directory, got %q", mockAPI.created[0].Track)
	}
}

func TestPushCommand_TrackFlagWins(t *testing.T) {
	tempDir := t.TempDir()
	path := writeLessonFile(t, tempDir, "guards.md", pushLessonSource)

	mockAPI := &mockPushClient{existing: map[string]bool{}}
	var output bytes.Buffer

	err := runPush([]string{path},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
		WithPushTrack("ruby"),
	)
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if mockAPI.created[0].Track != "ruby" {
		t.Errorf("expected --track to override frontmatter, got %q", mockAPI.created[0].Track)
	}
}

func TestPushCommand_MissingTitle(t *testing.T) {
	tempDir := t.TempDir()
	source := "---\ntrack: python\n---\n\nNo title here.\n"
	path := writeLessonFile(t, tempDir, "untitled.md", source)

	mockAPI := &mockPushClient{existing: map[string]bool{}}
	var output bytes.Buffer

	err := runPush([]string{path},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
	)
	if err == nil {
		t.Fatal("expected error for missing title, got nil")
	}
	if !strings.Contains(err.Error(), "title is required") {
		t.Errorf("expected title error, got: %v", err)
	}
}

func TestPushCommand_MissingFile(t *testing.T) {
	mockAPI := &mockPushClient{existing: map[string]bool{}}
	var output bytes.Buffer

	err := runPush([]string{"/nonexistent/lesson.md"},
		WithPushClient(mockAPI),
		WithPushServer(testServer()),
		WithPushOutput(&output),
	)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
