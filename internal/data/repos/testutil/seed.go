package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) *domain.Course {
	tb.Helper()
	c := &domain.Course{
		ID:        uuid.New(),
		Slug:      fmt.Sprintf("course-%s", uuid.NewString()[:8]),
		TeacherID: teacherID,
		TitleEn:   "course",
		TitleFr:   "cours",
		Status:    domain.CourseStatusDraft,
		Tags:      datatypes.JSON([]byte(`[]`)),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *domain.Lesson {
	tb.Helper()
	l := &domain.Lesson{
		ID:          uuid.New(),
		CourseID:    courseID,
		Slug:        fmt.Sprintf("lesson-%s", uuid.NewString()[:8]),
		LessonOrder: order,
		Status:      domain.LessonStatusDraft,
		TitleEn:     "lesson",
		TitleFr:     "lecon",
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedSlide(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, order int) *domain.Slide {
	tb.Helper()
	s := &domain.Slide{
		ID:         uuid.New(),
		LessonID:   lessonID,
		SlideOrder: order,
		Layout:     domain.SlideLayoutDefault,
		TitleEn:    "slide",
		TitleFr:    "diapositive",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed slide: %v", err)
	}
	return s
}

func SeedContentBlock(tb testing.TB, ctx context.Context, tx *gorm.DB, slideID uuid.UUID, order int) *domain.ContentBlock {
	tb.Helper()
	b := &domain.ContentBlock{
		ID:         uuid.New(),
		SlideID:    slideID,
		BlockOrder: order,
		BlockType:  "TEXT",
		Content:    datatypes.JSON([]byte(`{"html":"<p>hello</p>"}`)),
		Metadata:   datatypes.JSON([]byte(`{}`)),
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed content block: %v", err)
	}
	return b
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID, status string) *domain.Enrollment {
	tb.Helper()
	e := &domain.Enrollment{
		ID:        uuid.New(),
		StudentID: studentID,
		CourseID:  courseID,
		Status:    status,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedLessonProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID, status string) *domain.LessonProgress {
	tb.Helper()
	now := time.Now().UTC()
	p := &domain.LessonProgress{
		ID:           uuid.New(),
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
		Status:       status,
		StartedAt:    &now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed lesson progress: %v", err)
	}
	return p
}

func PtrInt(v int) *int { return &v }
