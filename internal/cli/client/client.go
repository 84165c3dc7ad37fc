package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lessond-dev/lessond/internal/cli/auth"
)

// ErrNotFound is returned when the server answers 404 for a resource
var ErrNotFound = errors.New("not found")

// Client represents an HTTP client for the Lessond API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the given server base URL
func New(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"is_admin"`
	} `json:"user"`
}

// Login authenticates the user and returns a JWT token
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	reqBody := LoginRequest{
		Email:    email,
		Password: password,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(
		fmt.Sprintf("%s/api/auth/login", c.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(body))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &loginResp, nil
}

// Lesson represents a lesson as returned by the API
type Lesson struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Track       string   `json:"track"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Position    int      `json:"position"`
	MembersOnly bool     `json:"members_only"`
	Published   bool     `json:"published"`
	UpdatedAt   string   `json:"updated_at"`
	Source      string   `json:"source,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
}

// LessonPayload is the request body for creating or updating a lesson
type LessonPayload struct {
	Slug        string   `json:"slug,omitempty"`
	Track       string   `json:"track,omitempty"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Position    int      `json:"position"`
	Source      string   `json:"source"`
	MembersOnly bool     `json:"members_only"`
	Published   bool     `json:"published"`
}

// LintReport represents a lint report as returned by the API
type LintReport struct {
	ID           string `json:"id"`
	Scope        string `json:"scope"`
	Status       string `json:"status"`
	FindingCount int    `json:"finding_count"`
	Findings     []struct {
		Check    string `json:"check"`
		Severity string `json:"severity"`
		Track    string `json:"track"`
		Slug     string `json:"slug"`
		Line     int    `json:"line"`
		Message  string `json:"message"`
	} `json:"findings"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ListLessons returns lessons visible to the authenticated user, optionally
// filtered by track
func (c *Client) ListLessons(serverURL, track string) ([]Lesson, error) {
	path := "/api/lessons"
	if track != "" {
		path += "?track=" + url.QueryEscape(track)
	}

	var lessons []Lesson
	if err := c.doAuthed(serverURL, http.MethodGet, path, nil, http.StatusOK, &lessons); err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// GetLesson fetches a single lesson including its Markdown source
func (c *Client) GetLesson(serverURL, track, slug string) (*Lesson, error) {
	var lesson Lesson
	path := fmt.Sprintf("/api/lessons/%s/%s", url.PathEscape(track), url.PathEscape(slug))
	if err := c.doAuthed(serverURL, http.MethodGet, path, nil, http.StatusOK, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CreateLesson creates a new lesson
func (c *Client) CreateLesson(serverURL string, payload LessonPayload) (*Lesson, error) {
	var lesson Lesson
	if err := c.doAuthed(serverURL, http.MethodPost, "/api/lessons", payload, http.StatusCreated, &lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	return &lesson, nil
}

// UpdateLesson replaces an existing lesson's content and metadata
func (c *Client) UpdateLesson(serverURL, track, slug string, payload LessonPayload) (*Lesson, error) {
	var lesson Lesson
	path := fmt.Sprintf("/api/lessons/%s/%s", url.PathEscape(track), url.PathEscape(slug))
	if err := c.doAuthed(serverURL, http.MethodPut, path, payload, http.StatusOK, &lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	return &lesson, nil
}

// DeleteLesson deletes a lesson
func (c *Client) DeleteLesson(serverURL, track, slug string) error {
	path := fmt.Sprintf("/api/lessons/%s/%s", url.PathEscape(track), url.PathEscape(slug))
	if err := c.doAuthed(serverURL, http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}

// TriggerCurriculumLint enqueues a lint run over the whole curriculum
func (c *Client) TriggerCurriculumLint(serverURL string) error {
	if err := c.doAuthed(serverURL, http.MethodPost, "/api/lint", nil, http.StatusAccepted, nil); err != nil {
		return fmt.Errorf("failed to trigger curriculum lint: %w", err)
	}
	return nil
}

// TriggerLessonLint enqueues a lint run for a single lesson
func (c *Client) TriggerLessonLint(serverURL, track, slug string) error {
	path := fmt.Sprintf("/api/lessons/%s/%s/lint", url.PathEscape(track), url.PathEscape(slug))
	if err := c.doAuthed(serverURL, http.MethodPost, path, nil, http.StatusAccepted, nil); err != nil {
		return fmt.Errorf("failed to trigger lesson lint: %w", err)
	}
	return nil
}

// GetLessonLintReport fetches the most recent lint report for a lesson
func (c *Client) GetLessonLintReport(serverURL, track, slug string) (*LintReport, error) {
	var report LintReport
	path := fmt.Sprintf("/api/lessons/%s/%s/lint", url.PathEscape(track), url.PathEscape(slug))
	if err := c.doAuthed(serverURL, http.MethodGet, path, nil, http.StatusOK, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListLintReports returns the most recent lint reports
func (c *Client) ListLintReports(serverURL string, limit int) ([]LintReport, error) {
	path := fmt.Sprintf("/api/lint/reports?limit=%d", limit)
	var reports []LintReport
	if err := c.doAuthed(serverURL, http.MethodGet, path, nil, http.StatusOK, &reports); err != nil {
		return nil, fmt.Errorf("failed to list lint reports: %w", err)
	}
	return reports, nil
}

// doAuthed performs an authenticated request and decodes the response into out
// when out is non-nil
func (c *Client) doAuthed(serverURL, method, path string, body interface{}, wantStatus int, out interface{}) error {
	token, err := auth.LoadToken(serverURL)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("request failed (status 404): %w", ErrNotFound)
		}
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
