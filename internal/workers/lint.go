package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/config"
	"github.com/lessond-dev/lessond/internal/lessons"
	"github.com/lessond-dev/lessond/internal/lint"
	"github.com/lessond-dev/lessond/internal/models"
	"github.com/lessond-dev/lessond/internal/tasks"
)

// HandleLintLesson runs the QA checks over one lesson copy and stores a
// report. The whole curriculum is loaded as link-resolution context.
func HandleLintLesson(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	var lesson models.Lesson
	if err := models.FindByID(db, payload.LessonID, &lesson); err != nil {
		// Lesson deleted between enqueue and run; nothing to lint
		logger.Warn().Str("lesson_id", payload.LessonID).Msg("Lesson not found, skipping lint")
		return nil
	}

	report := &models.LintReport{
		Scope:    models.LintScopeLesson,
		LessonID: &lesson.ID,
		Status:   models.LintStatusPending,
	}
	if err := db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create lint report: %w", err)
	}

	svc := lessons.NewService(db, cfg, logger)
	docs, err := svc.Documents()
	if err != nil {
		return failReport(db, report, err)
	}

	runner := lint.NewRunner(cfg.Content.BaseURL, logger)
	started := time.Now().UTC()
	findings := runner.LintLesson(lessons.Document(&lesson), docs)

	if err := finishReport(db, report, started, findings); err != nil {
		return err
	}

	logger.Info().
		Str("lesson_id", lesson.ID).
		Str("track", lesson.Track).
		Str("slug", lesson.Slug).
		Int("findings", len(findings)).
		Msg("Lesson lint complete")

	return nil
}

// HandleLintCurriculum runs the QA checks over every lesson plus the
// cross-track consistency check, and updates the schedule bookkeeping on
// the config singleton.
func HandleLintCurriculum(ctx context.Context, t *asynq.Task, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	report := &models.LintReport{
		Scope:  models.LintScopeCurriculum,
		Status: models.LintStatusPending,
	}
	if err := db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create lint report: %w", err)
	}

	svc := lessons.NewService(db, cfg, logger)
	docs, err := svc.Documents()
	if err != nil {
		return failReport(db, report, err)
	}

	runner := lint.NewRunner(cfg.Content.BaseURL, logger)
	started := time.Now().UTC()
	findings := runner.LintCurriculum(docs)

	if err := finishReport(db, report, started, findings); err != nil {
		return err
	}

	// Record the run on the config singleton so the scheduler can compute
	// the next due time
	now := time.Now().UTC()
	var appConfig models.Config
	if err := db.First(&appConfig).Error; err == nil {
		appConfig.LastLintedAt = &now
		if next, ok := nextLintTime(appConfig.LintSchedule, now); ok {
			appConfig.NextLintAt = &next
		}
		if err := db.Save(&appConfig).Error; err != nil {
			logger.Warn().Err(err).Msg("Failed to update lint schedule bookkeeping")
		}
	}

	logger.Info().
		Int("documents", len(docs)).
		Int("findings", len(findings)).
		Msg("Curriculum lint complete")

	return nil
}

// HandleImportContent imports the configured content directory and enqueues
// a curriculum lint when anything changed.
func HandleImportContent(ctx context.Context, t *asynq.Task, client *asynq.Client, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) error {
	svc := lessons.NewService(db, cfg, logger)

	stats, err := svc.ImportDir(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("failed to import content dir: %w", err)
	}

	if stats.Created+stats.Updated > 0 {
		lintTask, err := tasks.NewLintCurriculumTask()
		if err != nil {
			return fmt.Errorf("failed to create lint task: %w", err)
		}
		if _, err := client.Enqueue(lintTask, asynq.Queue("low")); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue curriculum lint after import")
			return fmt.Errorf("failed to enqueue curriculum lint: %w", err)
		}
	}

	logger.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Msg("Content import task complete")

	return nil
}

func finishReport(db *gorm.DB, report *models.LintReport, started time.Time, findings []lint.Finding) error {
	encoded, err := json.Marshal(findings)
	if err != nil {
		return failReport(db, report, fmt.Errorf("failed to encode findings: %w", err))
	}

	finished := time.Now().UTC()
	report.StartedAt = &started
	report.FinishedAt = &finished
	report.Findings = string(encoded)
	report.FindingCount = len(findings)
	if len(findings) == 0 {
		report.Status = models.LintStatusClean
	} else {
		report.Status = models.LintStatusFindings
	}

	if err := db.Save(report).Error; err != nil {
		return fmt.Errorf("failed to save lint report: %w", err)
	}
	return nil
}

func failReport(db *gorm.DB, report *models.LintReport, cause error) error {
	report.Status = models.LintStatusError
	report.ErrorMessage = cause.Error()
	if err := db.Save(report).Error; err != nil {
		return fmt.Errorf("failed to mark lint report failed: %w (cause: %v)", err, cause)
	}
	return cause
}
