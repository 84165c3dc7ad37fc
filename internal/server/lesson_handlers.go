package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lessond-dev/lessond/internal/lessons"
	"github.com/lessond-dev/lessond/internal/models"
	"github.com/lessond-dev/lessond/internal/tasks"
)

// LessonSummary is the list representation of a lesson
type LessonSummary struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Track       string    `json:"track"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Position    int       `json:"position"`
	MembersOnly bool      `json:"members_only"`
	Published   bool      `json:"published"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LessonDetail adds the markdown source to the summary representation
type LessonDetail struct {
	LessonSummary
	Source    string    `json:"source"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLessonRequest represents a request to create a lesson copy
type CreateLessonRequest struct {
	Slug        string   `json:"slug" binding:"required,slug"`
	Track       string   `json:"track" binding:"required,slug"`
	Title       string   `json:"title" binding:"required"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Position    int      `json:"position"`
	Source      string   `json:"source" binding:"required"`
	MembersOnly bool     `json:"members_only"`
	Published   bool     `json:"published"`
}

// UpdateLessonRequest represents a request to update a lesson copy.
// Slug and track come from the path.
type UpdateLessonRequest struct {
	Title       string   `json:"title" binding:"required"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Position    int      `json:"position"`
	Source      string   `json:"source" binding:"required"`
	MembersOnly bool     `json:"members_only"`
	Published   bool     `json:"published"`
}

func lessonSummary(l *models.Lesson) LessonSummary {
	return LessonSummary{
		ID:          l.ID,
		Slug:        l.Slug,
		Track:       l.Track,
		Title:       l.Title,
		Summary:     l.Summary,
		Tags:        l.TagList(),
		Position:    l.Position,
		MembersOnly: l.MembersOnly,
		Published:   l.Published,
		UpdatedAt:   l.UpdatedAt,
	}
}

func lessonDetail(l *models.Lesson) LessonDetail {
	return LessonDetail{
		LessonSummary: lessonSummary(l),
		Source:        l.Source,
		Checksum:      l.Checksum,
		CreatedAt:     l.CreatedAt,
	}
}

// loadReadableLesson fetches the lesson at :track/:slug and applies the read
// access rules: unpublished lessons are invisible without a session,
// members-only lessons require a session user. Writes the error response
// itself and returns nil when access is denied.
func (s *Server) loadReadableLesson(c *gin.Context) *models.Lesson {
	track := c.Param("track")
	slug := c.Param("slug")

	lesson, err := s.lessonsService.Get(track, slug)
	if err != nil {
		if err == lessons.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return nil
		}
		s.logger.Error().Err(err).Str("track", track).Str("slug", slug).Msg("Failed to load lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil
	}

	_, hasSession := GetSessionData(c)

	// Unpublished lessons do not exist for anonymous readers
	if !lesson.Published && !hasSession {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return nil
	}

	// Members-only content requires a session user
	if lesson.MembersOnly && !hasSession {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Members only: please log in"})
		return nil
	}

	return lesson
}

// @Summary List tracks
// @Tags lessons
// @Produce json
// @Success 200 {array} string
// @Router /api/tracks [get]
func (s *Server) listTracks(c *gin.Context) {
	tracks, err := s.lessonsService.Tracks()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list tracks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, tracks)
}

// @Summary List lessons
// @Description Lists lessons in teaching order. Anonymous readers only see
// @Description published lessons; authenticated users see everything.
// @Tags lessons
// @Produce json
// @Param track query string false "Restrict to one track"
// @Success 200 {array} LessonSummary
// @Router /api/lessons [get]
func (s *Server) listLessons(c *gin.Context) {
	_, hasSession := GetSessionData(c)
	track := c.Query("track")

	list, err := s.lessonsService.List(track, !hasSession)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list lessons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summaries := make([]LessonSummary, len(list))
	for i := range list {
		summaries[i] = lessonSummary(&list[i])
	}
	c.JSON(http.StatusOK, summaries)
}

// @Summary Get lesson
// @Tags lessons
// @Produce json
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Success 200 {object} LessonDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug} [get]
func (s *Server) getLesson(c *gin.Context) {
	lesson := s.loadReadableLesson(c)
	if lesson == nil {
		return
	}
	c.JSON(http.StatusOK, lessonDetail(lesson))
}

// @Summary Create lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLessonRequest true "Create lesson request"
// @Success 201 {object} LessonDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/lessons [post]
func (s *Server) createLesson(c *gin.Context) {
	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.lessonsService.Get(req.Track, req.Slug); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Lesson already exists in this track"})
		return
	}

	sessionData, _ := GetSessionData(c)

	lesson, _, err := s.lessonsService.Upsert(lessons.UpsertParams{
		Slug:        req.Slug,
		Track:       req.Track,
		Title:       req.Title,
		Summary:     req.Summary,
		Tags:        req.Tags,
		Position:    req.Position,
		Source:      req.Source,
		MembersOnly: req.MembersOnly,
		Published:   req.Published,
		AuthorID:    sessionData.UserID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lesson"})
		return
	}

	s.enqueueLessonLint(lesson.ID)
	c.JSON(http.StatusCreated, lessonDetail(lesson))
}

// @Summary Update lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Param request body UpdateLessonRequest true "Update lesson request"
// @Success 200 {object} LessonDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug} [put]
func (s *Server) updateLesson(c *gin.Context) {
	track := c.Param("track")
	slug := c.Param("slug")

	var req UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := s.lessonsService.Get(track, slug)
	if err != nil {
		if err == lessons.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	lesson, changed, err := s.lessonsService.Upsert(lessons.UpsertParams{
		Slug:        slug,
		Track:       track,
		Title:       req.Title,
		Summary:     req.Summary,
		Tags:        req.Tags,
		Position:    req.Position,
		Source:      req.Source,
		MembersOnly: req.MembersOnly,
		Published:   req.Published,
		AuthorID:    existing.AuthorID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to update lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lesson"})
		return
	}

	if changed {
		s.enqueueLessonLint(lesson.ID)
	}
	c.JSON(http.StatusOK, lessonDetail(lesson))
}

// @Summary Delete lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Success 204
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug} [delete]
func (s *Server) deleteLesson(c *gin.Context) {
	track := c.Param("track")
	slug := c.Param("slug")

	lesson, err := s.lessonsService.Get(track, slug)
	if err != nil {
		if err == lessons.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := s.db.Delete(lesson).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lesson"})
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("track", track).
		Str("slug", slug).
		Str("deleted_by", sessionData.UserID).
		Msg("Lesson deleted")

	c.Status(http.StatusNoContent)
}

// enqueueLessonLint schedules a lint run after a write. Failure to enqueue
// is logged but never fails the write itself.
func (s *Server) enqueueLessonLint(lessonID string) {
	task, err := tasks.NewLintLessonTask(lessonID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create lint task")
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Warn().Err(err).Str("lesson_id", lessonID).Msg("Failed to enqueue lint task")
	}
}
