package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

const recomputeConcurrency = 4

// EnrollmentCounters recomputes denormalized enrollment counters. Entity
// services call it after a change to a course's lesson set.
type EnrollmentCounters interface {
	RecomputeForCourse(ctx context.Context, courseID uuid.UUID) error
}

type ProgressService interface {
	RecordSlideView(ctx context.Context, studentID, lessonID uuid.UUID, timeSpentSeconds int) (*domain.LessonProgress, error)
	CompleteLesson(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.LessonProgress, error)
	ListForEnrollment(ctx context.Context, studentID, enrollmentID uuid.UUID) ([]*domain.LessonProgress, error)
	Recompute(ctx context.Context, enrollmentID uuid.UUID) error
	EnrollmentCounters
}

type progressService struct {
	db             *gorm.DB
	log            *logger.Logger
	lessonRepo     repos.LessonRepo
	enrollmentRepo repos.EnrollmentRepo
	progressRepo   repos.LessonProgressRepo
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	progressRepo repos.LessonProgressRepo,
) ProgressService {
	return &progressService{
		db:             db,
		log:            baseLog.With("service", "ProgressService"),
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
	}
}

// activeEnrollmentForLesson maps a lesson back to the student's enrollment in
// its course and rejects anything but an ACTIVE one.
func (s *progressService) activeEnrollmentForLesson(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.Enrollment, error) {
	courseID, found, err := s.lessonRepo.ResolveCourseID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("resolve lesson course: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("lesson %s not found", lessonID)
	}

	enrollment, err := s.enrollmentRepo.GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, apperr.Forbidden("not enrolled in this course")
	}
	if enrollment.Status != domain.EnrollmentStatusActive {
		return nil, apperr.Invalid("enrollment is %s", enrollment.Status)
	}
	return enrollment, nil
}

func (s *progressService) RecordSlideView(ctx context.Context, studentID, lessonID uuid.UUID, timeSpentSeconds int) (*domain.LessonProgress, error) {
	if timeSpentSeconds < 0 {
		return nil, apperr.Invalid("time_spent_seconds cannot be negative")
	}
	enrollment, err := s.activeEnrollmentForLesson(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}

	row, err := s.progressRepo.GetByEnrollmentAndLesson(ctx, nil, enrollment.ID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	now := time.Now().UTC()
	if row == nil {
		row = &domain.LessonProgress{
			ID:               uuid.New(),
			EnrollmentID:     enrollment.ID,
			LessonID:         lessonID,
			Status:           domain.ProgressStatusInProgress,
			SlidesViewed:     1,
			TimeSpentSeconds: timeSpentSeconds,
			StartedAt:        &now,
		}
		if _, err := s.progressRepo.Create(ctx, nil, []*domain.LessonProgress{row}); err != nil {
			return nil, fmt.Errorf("create progress: %w", err)
		}
		return row, nil
	}

	fields := map[string]interface{}{
		"slides_viewed":      row.SlidesViewed + 1,
		"time_spent_seconds": row.TimeSpentSeconds + timeSpentSeconds,
	}
	// Viewing a slide never downgrades a completed lesson.
	if row.Status == domain.ProgressStatusNotStarted {
		fields["status"] = domain.ProgressStatusInProgress
		fields["started_at"] = &now
	}
	if err := s.progressRepo.UpdateFields(ctx, nil, row.ID, fields); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return s.progressRepo.GetByEnrollmentAndLesson(ctx, nil, enrollment.ID, lessonID)
}

// CompleteLesson marks the lesson done and refreshes the enrollment counters.
// Completing an already completed lesson is a no-op.
func (s *progressService) CompleteLesson(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	enrollment, err := s.activeEnrollmentForLesson(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}

	row, err := s.progressRepo.GetByEnrollmentAndLesson(ctx, nil, enrollment.ID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	now := time.Now().UTC()
	if row == nil {
		row = &domain.LessonProgress{
			ID:           uuid.New(),
			EnrollmentID: enrollment.ID,
			LessonID:     lessonID,
			Status:       domain.ProgressStatusCompleted,
			StartedAt:    &now,
			CompletedAt:  &now,
		}
		if _, err := s.progressRepo.Create(ctx, nil, []*domain.LessonProgress{row}); err != nil {
			return nil, fmt.Errorf("create progress: %w", err)
		}
	} else if row.Status != domain.ProgressStatusCompleted {
		err := s.progressRepo.UpdateFields(ctx, nil, row.ID, map[string]interface{}{
			"status":       domain.ProgressStatusCompleted,
			"completed_at": &now,
		})
		if err != nil {
			return nil, fmt.Errorf("update progress: %w", err)
		}
	}

	if err := s.Recompute(ctx, enrollment.ID); err != nil {
		return nil, err
	}
	return s.progressRepo.GetByEnrollmentAndLesson(ctx, nil, enrollment.ID, lessonID)
}

func (s *progressService) ListForEnrollment(ctx context.Context, studentID, enrollmentID uuid.UUID) ([]*domain.LessonProgress, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, apperr.NotFound("enrollment %s not found", enrollmentID)
	}
	if enrollment.StudentID != studentID {
		return nil, apperr.Forbidden("this enrollment belongs to another student")
	}
	return s.progressRepo.ListByEnrollmentID(ctx, nil, enrollmentID)
}

// Recompute rebuilds an enrollment's counters from its progress rows. It is
// idempotent and safe to rerun after partial failures.
func (s *progressService) Recompute(ctx context.Context, enrollmentID uuid.UUID) error {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
	if err != nil {
		return fmt.Errorf("load enrollment: %w", err)
	}
	if enrollment == nil {
		return apperr.NotFound("enrollment %s not found", enrollmentID)
	}

	total, err := s.lessonRepo.CountByCourseID(ctx, nil, enrollment.CourseID)
	if err != nil {
		return fmt.Errorf("count lessons: %w", err)
	}
	rows, err := s.progressRepo.ListByEnrollmentID(ctx, nil, enrollmentID)
	if err != nil {
		return fmt.Errorf("load progress rows: %w", err)
	}

	completed := 0
	for _, row := range rows {
		if row.Status == domain.ProgressStatusCompleted {
			completed++
		}
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	fields := map[string]interface{}{
		"total_lessons":       int(total),
		"lessons_completed":   completed,
		"progress_percentage": percentage,
	}
	// DROPPED enrollments keep their status; an ACTIVE one flips to COMPLETED
	// when every lesson is done, and back if the lesson set grew.
	if enrollment.Status != domain.EnrollmentStatusDropped {
		if total > 0 && completed == int(total) {
			if enrollment.Status != domain.EnrollmentStatusCompleted {
				now := time.Now().UTC()
				fields["status"] = domain.EnrollmentStatusCompleted
				fields["completed_at"] = &now
			}
		} else if enrollment.Status == domain.EnrollmentStatusCompleted {
			fields["status"] = domain.EnrollmentStatusActive
			fields["completed_at"] = nil
		}
	}

	if err := s.enrollmentRepo.UpdateFields(ctx, nil, enrollmentID, fields); err != nil {
		return fmt.Errorf("update enrollment counters: %w", err)
	}
	return nil
}

// RecomputeForCourse refreshes every enrollment of a course after its lesson
// set changed, a few at a time.
func (s *progressService) RecomputeForCourse(ctx context.Context, courseID uuid.UUID) error {
	enrollments, err := s.enrollmentRepo.ListByCourseID(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	if len(enrollments) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeConcurrency)
	for _, e := range enrollments {
		id := e.ID
		g.Go(func() error {
			return s.Recompute(gctx, id)
		})
	}
	return g.Wait()
}
