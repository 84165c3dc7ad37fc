package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lessond-dev/lessond/internal/models"
	"github.com/lessond-dev/lessond/internal/tasks"
)

// StartLintScheduler runs a periodic check (every minute) for a due
// scheduled curriculum lint
func StartLintScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueLint(client, db, logger)

	for range ticker.C {
		checkAndEnqueueLint(client, db, logger)
	}
}

func checkAndEnqueueLint(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton config
	var config models.Config
	err := db.First(&config).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping lint schedule check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for lint schedule")
		return
	}

	if config.LintSchedule == "" {
		logger.Debug().Msg("No lint schedule configured")
		return
	}

	now := time.Now().UTC()
	if config.NextLintAt != nil && config.NextLintAt.After(now) {
		logger.Debug().
			Time("next_lint_at", *config.NextLintAt).
			Msg("Scheduled lint not due yet")
		return
	}

	task, err := tasks.NewLintCurriculumTask()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create scheduled lint task")
		return
	}
	if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue scheduled lint task")
		return
	}

	// Advance NextLintAt immediately so the next tick does not double-enqueue
	if next, ok := nextLintTime(config.LintSchedule, now); ok {
		config.NextLintAt = &next
		if err := db.Save(&config).Error; err != nil {
			logger.Error().Err(err).Msg("Failed to persist next lint time")
			return
		}
	}

	logger.Info().
		Str("lint_schedule", config.LintSchedule).
		Msg("Scheduled curriculum lint enqueued")
}

// nextLintTime computes the next run after from for a standard 5-field cron
// expression. Invalid or empty expressions return false.
func nextLintTime(schedule string, from time.Time) (time.Time, bool) {
	if schedule == "" {
		return time.Time{}, false
	}
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, false
	}
	return spec.Next(from), true
}
