package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lessond-dev/lessond/internal/models"
	"github.com/lessond-dev/lessond/internal/sysinfo"
)

// SystemInfoResponse aggregates service and host information
type SystemInfoResponse struct {
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	LessonCount   int64            `json:"lesson_count"`
	TrackCount    int64            `json:"track_count"`
	UserCount     int64            `json:"user_count"`
	ReportCount   int64            `json:"report_count"`
	ContentDir    string           `json:"content_dir"`
	Host          *sysinfo.Metrics `json:"host,omitempty"`
}

// @Summary Get system info
// @Tags system
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SystemInfoResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/system/info [get]
func (s *Server) getSystemInfo(c *gin.Context) {
	resp := SystemInfoResponse{
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		ContentDir:    s.config.Content.Dir,
	}

	if err := s.db.Model(&models.Lesson{}).Count(&resp.LessonCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count lessons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := s.db.Model(&models.Lesson{}).Distinct("track").Count(&resp.TrackCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count tracks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := s.db.Model(&models.User{}).Count(&resp.UserCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := s.db.Model(&models.LintReport{}).Count(&resp.ReportCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count lint reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Host metrics are best-effort; the endpoint stays useful without them
	if metrics, err := sysinfo.GetMetrics(filepath.Dir(s.config.Database.URL)); err == nil {
		resp.Host = &metrics
	} else {
		s.logger.Debug().Err(err).Msg("Host metrics unavailable")
	}

	c.JSON(http.StatusOK, resp)
}
