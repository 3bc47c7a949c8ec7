package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonStatusDraft     = "DRAFT"
	LessonStatusPublished = "PUBLISHED"
)

// Lesson order is one-based and unique within its course. Conflicting orders
// are rejected rather than auto-shifted; gaps are allowed.
type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;index;not null;column:course_id" json:"course_id"`
	Slug     string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`

	LessonOrder int    `gorm:"not null;column:lesson_order" json:"lesson_order"`
	Status      string `gorm:"not null;column:status;default:DRAFT" json:"status"`

	TitleEn       string `gorm:"not null;column:title_en" json:"title_en"`
	TitleFr       string `gorm:"not null;column:title_fr" json:"title_fr"`
	DescriptionEn string `gorm:"column:description_en" json:"description_en"`
	DescriptionFr string `gorm:"column:description_fr" json:"description_fr"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }
