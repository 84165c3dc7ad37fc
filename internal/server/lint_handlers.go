package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/lessons"
	"github.com/lessond-dev/lessond/internal/lint"
	"github.com/lessond-dev/lessond/internal/models"
	"github.com/lessond-dev/lessond/internal/tasks"
)

// LintReportDetail is the API representation of a lint report
type LintReportDetail struct {
	ID           string         `json:"id"`
	Scope        string         `json:"scope"`
	LessonID     *string        `json:"lesson_id,omitempty"`
	Status       string         `json:"status"`
	FindingCount int            `json:"finding_count"`
	Findings     []lint.Finding `json:"findings"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func lintReportDetail(r *models.LintReport) LintReportDetail {
	detail := LintReportDetail{
		ID:           r.ID,
		Scope:        r.Scope,
		LessonID:     r.LessonID,
		Status:       r.Status,
		FindingCount: r.FindingCount,
		Findings:     []lint.Finding{},
		ErrorMessage: r.ErrorMessage,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		CreatedAt:    r.CreatedAt,
	}
	if r.Findings != "" {
		// A decode failure leaves the findings list empty; the raw count
		// is still reported
		_ = json.Unmarshal([]byte(r.Findings), &detail.Findings)
	}
	return detail
}

// @Summary Trigger curriculum lint
// @Description Enqueues a QA run over every lesson plus the cross-track
// @Description consistency check
// @Tags lint
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/lint [post]
func (s *Server) triggerCurriculumLint(c *gin.Context) {
	task, err := tasks.NewLintCurriculumTask()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create curriculum lint task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger lint"})
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue curriculum lint task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger lint"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "lint enqueued"})
}

// @Summary List lint reports
// @Tags lint
// @Produce json
// @Security BearerAuth
// @Param scope query string false "Filter by scope (lesson or curriculum)"
// @Param limit query int false "Maximum reports to return (default 20)"
// @Success 200 {array} LintReportDetail
// @Failure 401 {object} map[string]interface{}
// @Router /api/lint/reports [get]
func (s *Server) listLintReports(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	query := s.db.Order("created_at DESC").Limit(limit)
	if scope := c.Query("scope"); scope != "" {
		query = query.Where("scope = ?", scope)
	}

	var reports []models.LintReport
	if err := query.Find(&reports).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list lint reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]LintReportDetail, len(reports))
	for i := range reports {
		details[i] = lintReportDetail(&reports[i])
	}
	c.JSON(http.StatusOK, details)
}

// @Summary Trigger lesson lint
// @Tags lint
// @Produce json
// @Security BearerAuth
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug}/lint [post]
func (s *Server) triggerLessonLint(c *gin.Context) {
	lesson, err := s.lessonsService.Get(c.Param("track"), c.Param("slug"))
	if err != nil {
		if err == lessons.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	task, err := tasks.NewLintLessonTask(lesson.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create lint task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger lint"})
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue lint task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger lint"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "lint enqueued", "lesson_id": lesson.ID})
}

// @Summary Get latest lesson lint report
// @Tags lint
// @Produce json
// @Security BearerAuth
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Success 200 {object} LintReportDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug}/lint [get]
func (s *Server) getLessonLintReport(c *gin.Context) {
	lesson, err := s.lessonsService.Get(c.Param("track"), c.Param("slug"))
	if err != nil {
		if err == lessons.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load lesson")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var report models.LintReport
	err = s.db.Where("lesson_id = ?", lesson.ID).Order("created_at DESC").First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No lint report for this lesson yet"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load lint report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, lintReportDetail(&report))
}

// @Summary Import content directory
// @Description Enqueues an import of the configured content directory
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/content/import [post]
func (s *Server) importContent(c *gin.Context) {
	task, err := tasks.NewImportContentTask()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create import task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger import"})
		return
	}
	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue import task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger import"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "import enqueued", "dir": s.config.Content.Dir})
}
