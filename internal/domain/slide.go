package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlideLayoutDefault   = "default"
	SlideLayoutTwoColumn = "two-column"
	SlideLayoutFullBleed = "full-bleed"
)

// Slide order is zero-based and contiguous within its lesson; inserts shift
// and deletes compact in the same transaction.
type Slide struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID uuid.UUID `gorm:"type:uuid;index;not null;column:lesson_id" json:"lesson_id"`

	SlideOrder int    `gorm:"not null;column:slide_order" json:"slide_order"`
	Layout     string `gorm:"not null;column:layout;default:default" json:"layout"`

	TitleEn string `gorm:"column:title_en" json:"title_en"`
	TitleFr string `gorm:"column:title_fr" json:"title_fr"`
	NotesEn string `gorm:"column:notes_en" json:"notes_en"`
	NotesFr string `gorm:"column:notes_fr" json:"notes_fr"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Slide) TableName() string { return "slides" }
