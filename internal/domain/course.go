package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CourseStatusDraft     = "DRAFT"
	CourseStatusPublished = "PUBLISHED"
	CourseStatusArchived  = "ARCHIVED"
)

type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	TeacherID uuid.UUID `gorm:"type:uuid;index;not null;column:teacher_id" json:"teacher_id"`

	TitleEn       string `gorm:"not null;column:title_en" json:"title_en"`
	TitleFr       string `gorm:"not null;column:title_fr" json:"title_fr"`
	DescriptionEn string `gorm:"column:description_en" json:"description_en"`
	DescriptionFr string `gorm:"column:description_fr" json:"description_fr"`

	Status      string         `gorm:"not null;column:status;default:DRAFT" json:"status"`
	Tags        datatypes.JSON `gorm:"column:tags" json:"tags"`
	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }
