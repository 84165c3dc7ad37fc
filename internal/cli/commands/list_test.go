package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
)

// mockListClient simulates the API client for listing lessons
type mockListClient struct {
	lessons    []client.Lesson
	gotTrack   string
	shouldFail bool
	errorMsg   string
}

func (m *mockListClient) ListLessons(serverURL, track string) ([]client.Lesson, error) {
	m.gotTrack = track
	if m.shouldFail {
		return nil, errors.New(m.errorMsg)
	}
	return m.lessons, nil
}

func testServer() *config.Server {
	return &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}
}

func TestListCommand_NoLessons(t *testing.T) {
	mockAPI := &mockListClient{
		lessons: []client.Lesson{},
	}

	var output bytes.Buffer

	err := runList(
		WithListClient(mockAPI),
		WithListServer(testServer()),
		WithListOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	outputStr := output.String()
	if !strings.Contains(outputStr, "No lessons found") {
		t.Errorf("expected 'No lessons found' message, got: %s", outputStr)
	}

	if !strings.Contains(outputStr, "lessond push") {
		t.Errorf("expected helpful message about pushing lessons, got: %s", outputStr)
	}
}

func TestListCommand_DisplaysLessons(t *testing.T) {
	mockAPI := &mockListClient{
		lessons: []client.Lesson{
			{Track: "python", Position: 1, Slug: "intro", Title: "Introduction", Published: true},
			{Track: "python", Position: 2, Slug: "guards", Title: "Guards", Published: false},
			{Track: "ruby", Position: 1, Slug: "intro", Title: "Introduction", Published: true, MembersOnly: true},
		},
	}

	var output bytes.Buffer

	err := runList(
		WithListClient(mockAPI),
		WithListServer(testServer()),
		WithListOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	outputStr := output.String()
	for _, want := range []string{"python", "ruby", "guards", "draft", "published", "members-only"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("expected output to contain %q, got: %s", want, outputStr)
		}
	}
}

func TestListCommand_TrackFilterPassedThrough(t *testing.T) {
	mockAPI := &mockListClient{
		lessons: []client.Lesson{},
	}

	var output bytes.Buffer

	err := runList(
		WithListClient(mockAPI),
		WithListServer(testServer()),
		WithListOutput(&output),
		WithListTrack("ruby"),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if mockAPI.gotTrack != "ruby" {
		t.Errorf("expected track filter 'ruby' to be passed to client, got %q", mockAPI.gotTrack)
	}
}

func TestListCommand_NoConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	mustChdir(t, tempDir)

	err := runList()
	if err == nil {
		t.Fatal("expected error when config file is missing, got nil")
	}

	if !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("expected error about missing config, got: %s", err.Error())
	}
}

func TestListCommand_APIFailure(t *testing.T) {
	mockAPI := &mockListClient{
		shouldFail: true,
		errorMsg:   "not authenticated. Please run 'lessond login' first",
	}

	var output bytes.Buffer

	err := runList(
		WithListClient(mockAPI),
		WithListServer(testServer()),
		WithListOutput(&output),
	)
	if err == nil {
		t.Fatal("expected error when API fails, but got success")
	}

	if !strings.Contains(err.Error(), "not authenticated") {
		t.Errorf("expected authentication error, got: %s", err.Error())
	}
}
