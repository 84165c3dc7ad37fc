package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Lint tasks: one lesson copy, or the whole curriculum
	TypeLintLesson     = "lint:lesson"
	TypeLintCurriculum = "lint:curriculum"

	// Content import from the configured content directory
	TypeImportContent = "content:import"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	LessonID string `json:"lesson_id,omitempty"`
}

// NewLintLessonTask creates a task to lint one lesson copy
func NewLintLessonTask(lessonID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		LessonID: lessonID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLintLesson, payload), nil
}

// NewLintCurriculumTask creates a task to lint the whole curriculum,
// including the cross-track consistency check
func NewLintCurriculumTask() (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLintCurriculum, payload), nil
}

// NewImportContentTask creates a task to import the content directory
func NewImportContentTask() (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeImportContent, payload), nil
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
