package dto

import (
	"encoding/json"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RegisterValidators installs the custom binding rules on gin's validator
// engine. Call once at startup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) <= 100 && slugRe.MatchString(s)
	})
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=teacher student"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CreateCourseRequest struct {
	Slug          string   `json:"slug" binding:"required,slug"`
	TitleEn       string   `json:"title_en" binding:"required"`
	TitleFr       string   `json:"title_fr" binding:"required"`
	DescriptionEn string   `json:"description_en"`
	DescriptionFr string   `json:"description_fr"`
	Tags          []string `json:"tags"`
}

type UpdateCourseRequest struct {
	Slug          *string  `json:"slug" binding:"omitempty,slug"`
	TitleEn       *string  `json:"title_en"`
	TitleFr       *string  `json:"title_fr"`
	DescriptionEn *string  `json:"description_en"`
	DescriptionFr *string  `json:"description_fr"`
	Tags          []string `json:"tags"`
}

type CreateLessonRequest struct {
	Slug          string `json:"slug" binding:"required,slug"`
	LessonOrder   int    `json:"lesson_order" binding:"required,gte=1"`
	TitleEn       string `json:"title_en" binding:"required"`
	TitleFr       string `json:"title_fr" binding:"required"`
	DescriptionEn string `json:"description_en"`
	DescriptionFr string `json:"description_fr"`
}

type UpdateLessonRequest struct {
	Slug          *string `json:"slug" binding:"omitempty,slug"`
	LessonOrder   *int    `json:"lesson_order" binding:"omitempty,gte=1"`
	Status        *string `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
	TitleEn       *string `json:"title_en"`
	TitleFr       *string `json:"title_fr"`
	DescriptionEn *string `json:"description_en"`
	DescriptionFr *string `json:"description_fr"`
}

type CreateSlideRequest struct {
	Layout   string `json:"layout" binding:"omitempty,oneof=default two-column full-bleed"`
	TitleEn  string `json:"title_en"`
	TitleFr  string `json:"title_fr"`
	NotesEn  string `json:"notes_en"`
	NotesFr  string `json:"notes_fr"`
	Position *int   `json:"position" binding:"omitempty,gte=0"`
}

type UpdateSlideRequest struct {
	Layout  *string `json:"layout" binding:"omitempty,oneof=default two-column full-bleed"`
	TitleEn *string `json:"title_en"`
	TitleFr *string `json:"title_fr"`
	NotesEn *string `json:"notes_en"`
	NotesFr *string `json:"notes_fr"`
}

type MoveSlideRequest struct {
	TargetLessonID uuid.UUID `json:"target_lesson_id" binding:"required"`
	Position       *int      `json:"position" binding:"omitempty,gte=0"`
}

// ReorderRequest maps entity id to its new zero-based position. The set must
// cover every sibling exactly once.
type ReorderRequest struct {
	Orders map[uuid.UUID]int `json:"orders" binding:"required,min=1"`
}

type CreateBlockRequest struct {
	BlockType string          `json:"block_type" binding:"required"`
	Content   json.RawMessage `json:"content" binding:"required"`
	Metadata  json.RawMessage `json:"metadata"`
	Position  *int            `json:"position" binding:"omitempty,gte=0"`
}

type UpdateBlockRequest struct {
	Content  json.RawMessage `json:"content"`
	Metadata json.RawMessage `json:"metadata"`
}

type BulkDeleteBlocksRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

type EnrollRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type SlideViewRequest struct {
	TimeSpentSeconds int `json:"time_spent_seconds" binding:"omitempty,gte=0"`
}
