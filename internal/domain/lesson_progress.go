package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProgressStatusNotStarted = "NOT_STARTED"
	ProgressStatusInProgress = "IN_PROGRESS"
	ProgressStatusCompleted  = "COMPLETED"
)

type LessonProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_enrollment_lesson;column:enrollment_id" json:"enrollment_id"`
	LessonID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_enrollment_lesson;column:lesson_id" json:"lesson_id"`

	Status           string `gorm:"not null;column:status;default:NOT_STARTED" json:"status"`
	SlidesViewed     int    `gorm:"not null;column:slides_viewed;default:0" json:"slides_viewed"`
	TimeSpentSeconds int    `gorm:"not null;column:time_spent_seconds;default:0" json:"time_spent_seconds"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
