package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/models"
)

// ConfigResponse is the API representation of the config singleton
type ConfigResponse struct {
	SiteTitle    string     `json:"site_title"`
	DefaultTrack string     `json:"default_track"`
	LintSchedule string     `json:"lint_schedule"`
	LastLintedAt *time.Time `json:"last_linted_at"`
	NextLintAt   *time.Time `json:"next_lint_at"`
}

// UpdateConfigRequest carries a partial config update; nil fields are left
// unchanged
type UpdateConfigRequest struct {
	SiteTitle    *string `json:"site_title"`
	DefaultTrack *string `json:"default_track" binding:"omitempty,slug"`
	LintSchedule *string `json:"lint_schedule"`
}

func configResponse(c *models.Config) ConfigResponse {
	return ConfigResponse{
		SiteTitle:    c.SiteTitle,
		DefaultTrack: c.DefaultTrack,
		LintSchedule: c.LintSchedule,
		LastLintedAt: c.LastLintedAt,
		NextLintAt:   c.NextLintAt,
	}
}

// @Summary Get configuration
// @Tags config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ConfigResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/config [get]
func (s *Server) getConfig(c *gin.Context) {
	var appConfig models.Config
	if err := s.db.First(&appConfig).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setup not completed yet"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, configResponse(&appConfig))
}

// @Summary Update configuration
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateConfigRequest true "Partial config update"
// @Success 200 {object} ConfigResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/config [patch]
func (s *Server) updateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appConfig models.Config
	if err := s.db.First(&appConfig).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setup not completed yet"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if req.SiteTitle != nil {
		appConfig.SiteTitle = *req.SiteTitle
	}
	if req.DefaultTrack != nil {
		appConfig.DefaultTrack = *req.DefaultTrack
	}
	if req.LintSchedule != nil {
		schedule := *req.LintSchedule
		if schedule == "" {
			// Clearing the schedule disables periodic lints
			appConfig.LintSchedule = ""
			appConfig.NextLintAt = nil
		} else {
			spec, err := cron.ParseStandard(schedule)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cron expression for lint_schedule"})
				return
			}
			next := spec.Next(time.Now().UTC())
			appConfig.LintSchedule = schedule
			appConfig.NextLintAt = &next
		}
	}

	if err := s.db.Save(&appConfig).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to save config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config"})
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().Str("updated_by", sessionData.UserID).Msg("Configuration updated")

	c.JSON(http.StatusOK, configResponse(&appConfig))
}
