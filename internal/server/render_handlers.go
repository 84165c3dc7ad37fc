package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessond-dev/lessond/internal/markdown"
)

// RenderedLesson is the rendered representation served to readers. HTML is
// the cached goldmark output; the outline mirrors the heading hierarchy for
// table-of-contents rendering.
type RenderedLesson struct {
	Slug    string             `json:"slug"`
	Track   string             `json:"track"`
	Title   string             `json:"title"`
	HTML    string             `json:"html"`
	Outline []markdown.Heading `json:"outline"`
}

// @Summary Get rendered lesson
// @Description Returns the lesson rendered to HTML with its heading outline.
// @Description Members-only lessons require a session.
// @Tags lessons
// @Produce json
// @Param track path string true "Track"
// @Param slug path string true "Slug"
// @Success 200 {object} RenderedLesson
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/lessons/{track}/{slug}/html [get]
func (s *Server) getLessonHTML(c *gin.Context) {
	lesson := s.loadReadableLesson(c)
	if lesson == nil {
		return
	}

	html := lesson.HTML
	if html == "" {
		// Older rows may predate render-on-write; render on demand
		rendered, err := markdown.NewRenderer().Render([]byte(lesson.Source))
		if err != nil {
			s.logger.Error().Err(err).Str("lesson_id", lesson.ID).Msg("Failed to render lesson")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render lesson"})
			return
		}
		html = string(rendered)
	}

	outline := markdown.NewRenderer().Outline([]byte(lesson.Source))

	c.JSON(http.StatusOK, RenderedLesson{
		Slug:    lesson.Slug,
		Track:   lesson.Track,
		Title:   lesson.Title,
		HTML:    html,
		Outline: outline,
	})
}
