package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guardLessonSource = `# Pre-Request Guards

## Checking the Session

Reject the request before the handler runs when no user is signed in.

` + "```python\n@app.before_request\ndef check_if_logged_in():\n    pass\n```\n"

func createLesson(t *testing.T, srv *Server, token string, req CreateLessonRequest) LessonDetail {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/lessons", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var detail LessonDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	return detail
}

func TestCreateAndGetLesson(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	detail := createLesson(t, srv, token, CreateLessonRequest{
		Slug:      "pre-request-guards",
		Track:     "python",
		Title:     "Pre-Request Guards",
		Summary:   "Run one check before every handler",
		Tags:      []string{"authorization", "middleware"},
		Position:  1,
		Source:    guardLessonSource,
		Published: true,
	})
	assert.NotEmpty(t, detail.ID)
	assert.NotEmpty(t, detail.Checksum)

	// Public read without a session
	rec := doJSON(t, srv, http.MethodGet, "/api/lessons/python/pre-request-guards", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched LessonDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Pre-Request Guards", fetched.Title)
	assert.Equal(t, []string{"authorization", "middleware"}, fetched.Tags)

	// Duplicate slug within the same track
	rec = doJSON(t, srv, http.MethodPost, "/api/lessons", token, CreateLessonRequest{
		Slug:      "pre-request-guards",
		Track:     "python",
		Title:     "Duplicate",
		Source:    "# Duplicate\n",
		Published: true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The same slug on another track is a variant, not a conflict
	rec = doJSON(t, srv, http.MethodPost, "/api/lessons", token, CreateLessonRequest{
		Slug:      "pre-request-guards",
		Track:     "ruby",
		Title:     "Pre-Request Guards",
		Source:    guardLessonSource,
		Published: true,
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateLessonValidation(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	tests := []struct {
		name string
		req  CreateLessonRequest
	}{
		{"uppercase slug", CreateLessonRequest{Slug: "Bad-Slug", Track: "python", Title: "T", Source: "# T\n"}},
		{"slug with spaces", CreateLessonRequest{Slug: "bad slug", Track: "python", Title: "T", Source: "# T\n"}},
		{"missing title", CreateLessonRequest{Slug: "ok-slug", Track: "python", Source: "# T\n"}},
		{"missing source", CreateLessonRequest{Slug: "ok-slug", Track: "python", Title: "T"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/lessons", token, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Writes require a session regardless of payload
	rec := doJSON(t, srv, http.MethodPost, "/api/lessons", "", CreateLessonRequest{
		Slug: "ok-slug", Track: "python", Title: "T", Source: "# T\n",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateAndDeleteLesson(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	createLesson(t, srv, token, CreateLessonRequest{
		Slug:      "pre-request-guards",
		Track:     "python",
		Title:     "Pre-Request Guards",
		Source:    guardLessonSource,
		Published: true,
	})

	rec := doJSON(t, srv, http.MethodPut, "/api/lessons/python/pre-request-guards", token, UpdateLessonRequest{
		Title:     "Pre-Request Guards, Revised",
		Source:    guardLessonSource + "\n## A New Section\n\nMore.\n",
		Published: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated LessonDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Pre-Request Guards, Revised", updated.Title)

	rec = doJSON(t, srv, http.MethodPut, "/api/lessons/python/no-such-lesson", token, UpdateLessonRequest{
		Title: "X", Source: "# X\n", Published: true,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/lessons/python/pre-request-guards", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/lessons/python/pre-request-guards", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListLessonsVisibility(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	createLesson(t, srv, token, CreateLessonRequest{
		Slug: "published-lesson", Track: "python", Title: "Published",
		Source: "# Published\n", Position: 1, Published: true,
	})
	createLesson(t, srv, token, CreateLessonRequest{
		Slug: "draft-lesson", Track: "python", Title: "Draft",
		Source: "# Draft\n", Position: 2, Published: false,
	})

	// Anonymous listing only sees published lessons
	rec := doJSON(t, srv, http.MethodGet, "/api/lessons?track=python", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var anon []LessonSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	require.Len(t, anon, 1)
	assert.Equal(t, "published-lesson", anon[0].Slug)

	// A signed-in reader sees drafts too
	rec = doJSON(t, srv, http.MethodGet, "/api/lessons?track=python", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var member []LessonSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))
	assert.Len(t, member, 2)

	// Draft detail is hidden from anonymous readers
	rec = doJSON(t, srv, http.MethodGet, "/api/lessons/python/draft-lesson", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMembersOnlyLesson(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	createLesson(t, srv, token, CreateLessonRequest{
		Slug:        "members-only-guide",
		Track:       "python",
		Title:       "Members Only Guide",
		Source:      "# Members Only Guide\n\nSecret material.\n",
		MembersOnly: true,
		Published:   true,
	})

	// Members-only content: visible in listings, body requires a session
	rec := doJSON(t, srv, http.MethodGet, "/api/lessons/python/members-only-guide", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/lessons/python/members-only-guide/html", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/lessons/python/members-only-guide", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLessonHTML(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	source := "# Guard Clauses\n\n<details><summary>Why 401 and not 403?</summary>\n\nNo session yet.\n\n</details>\n"
	createLesson(t, srv, token, CreateLessonRequest{
		Slug: "guard-clauses", Track: "python", Title: "Guard Clauses",
		Source: source, Published: true,
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/lessons/python/guard-clauses/html", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rendered RenderedLesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rendered))
	assert.Contains(t, rendered.HTML, `<h1 id="guard-clauses">`)
	assert.Contains(t, rendered.HTML, "<details>")
	assert.Contains(t, rendered.HTML, "<summary>")
	require.Len(t, rendered.Outline, 1)
	assert.Equal(t, "Guard Clauses", rendered.Outline[0].Text)
}

func TestListTracks(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	for i, track := range []string{"python", "ruby"} {
		createLesson(t, srv, token, CreateLessonRequest{
			Slug: "shared-lesson", Track: track, Title: "Shared",
			Source: "# Shared\n", Position: i + 1, Published: true,
		})
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/tracks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	assert.ElementsMatch(t, []string{"python", "ruby"}, tracks)
}

func TestLintEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	createLesson(t, srv, token, CreateLessonRequest{
		Slug: "pre-request-guards", Track: "python", Title: "Pre-Request Guards",
		Source: guardLessonSource, Published: true,
	})

	// No reports yet for the lesson
	rec := doJSON(t, srv, http.MethodGet, "/api/lessons/python/pre-request-guards/lint", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Triggering a run enqueues work; without Redis it is still accepted
	// as a request shape, and report listing stays consistent
	rec = doJSON(t, srv, http.MethodGet, "/api/lint/reports", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []LintReportDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	assert.Empty(t, reports)

	rec = doJSON(t, srv, http.MethodGet, "/api/lint/reports?limit=500", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/lessons/python/no-such-lesson/lint", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigEndpoints(t *testing.T) {
	srv := newTestServer(t)

	// Config does not exist before setup
	tokenless := doJSON(t, srv, http.MethodGet, "/api/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, tokenless.Code)

	token := runSetup(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/config", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Empty(t, cfg.LintSchedule)

	// A bad cron expression is rejected
	bad := "not a schedule"
	rec = doJSON(t, srv, http.MethodPatch, "/api/config", token, UpdateConfigRequest{
		LintSchedule: &bad,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A valid schedule sets the next run time
	nightly := "0 3 * * *"
	title := "Flatiron Curriculum"
	rec = doJSON(t, srv, http.MethodPatch, "/api/config", token, UpdateConfigRequest{
		SiteTitle:    &title,
		LintSchedule: &nightly,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Flatiron Curriculum", cfg.SiteTitle)
	assert.Equal(t, nightly, cfg.LintSchedule)
	require.NotNil(t, cfg.NextLintAt)

	// Clearing the schedule clears the next run
	empty := ""
	rec = doJSON(t, srv, http.MethodPatch, "/api/config", token, UpdateConfigRequest{
		LintSchedule: &empty,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Nil(t, cfg.NextLintAt)
}

func TestUserManagement(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", token, CreateUserRequest{
		Email:    "writer@example.com",
		Name:     "Writer",
		Password: "writer-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CreateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.User)

	// Duplicate email
	rec = doJSON(t, srv, http.MethodPost, "/api/users", token, CreateUserRequest{
		Email:    "writer@example.com",
		Name:     "Writer Again",
		Password: "writer-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []UserDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	// An admin cannot delete their own account
	var self UserDetail
	me := doJSON(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &self))

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/users/%s", self.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/users/%s", created.User.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSystemInfo(t *testing.T) {
	srv := newTestServer(t)
	token := runSetup(t, srv)

	createLesson(t, srv, token, CreateLessonRequest{
		Slug: "pre-request-guards", Track: "python", Title: "Pre-Request Guards",
		Source: guardLessonSource, Published: true,
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/system/info", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info SystemInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, int64(1), info.LessonCount)
	assert.Equal(t, int64(1), info.UserCount)
}
