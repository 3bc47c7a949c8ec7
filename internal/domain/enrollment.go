package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentStatusActive    = "ACTIVE"
	EnrollmentStatusCompleted = "COMPLETED"
	EnrollmentStatusDropped   = "DROPPED"
)

// Enrollment carries denormalized progress counters recomputed from the
// lesson_progress rows; they are never derived on read.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course;column:student_id" json:"student_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course;column:course_id" json:"course_id"`

	Status             string  `gorm:"not null;column:status;default:ACTIVE" json:"status"`
	ProgressPercentage float64 `gorm:"not null;column:progress_percentage;default:0" json:"progress_percentage"`
	LessonsCompleted   int     `gorm:"not null;column:lessons_completed;default:0" json:"lessons_completed"`
	TotalLessons       int     `gorm:"not null;column:total_lessons;default:0" json:"total_lessons"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollments" }
