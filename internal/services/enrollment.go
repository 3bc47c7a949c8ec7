package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*domain.Enrollment, error)
	Drop(ctx context.Context, studentID, enrollmentID uuid.UUID) (*domain.Enrollment, error)
	Get(ctx context.Context, studentID, enrollmentID uuid.UUID) (*domain.Enrollment, error)
	ListMine(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	lessonRepo     repos.LessonRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Enroll joins a student to a published course. A previously dropped
// enrollment is reactivated in place so its progress rows survive.
func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*domain.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course %s not found", courseID)
	}
	if course.Status != domain.CourseStatusPublished {
		return nil, apperr.Invalid("course is not open for enrollment")
	}

	existing, err := s.enrollmentRepo.GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if existing != nil {
		if existing.Status != domain.EnrollmentStatusDropped {
			return nil, apperr.Conflict("already enrolled in this course")
		}
		err := s.enrollmentRepo.UpdateFields(ctx, nil, existing.ID, map[string]interface{}{
			"status": domain.EnrollmentStatusActive,
		})
		if err != nil {
			return nil, fmt.Errorf("reactivate enrollment: %w", err)
		}
		return s.enrollmentRepo.GetByID(ctx, nil, existing.ID)
	}

	totalLessons, err := s.lessonRepo.CountByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}

	enrollment := &domain.Enrollment{
		ID:           uuid.New(),
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       domain.EnrollmentStatusActive,
		TotalLessons: int(totalLessons),
	}
	if _, err := s.enrollmentRepo.Create(ctx, nil, []*domain.Enrollment{enrollment}); err != nil {
		s.log.Error("create enrollment failed", "error", err)
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return enrollment, nil
}

func (s *enrollmentService) Drop(ctx context.Context, studentID, enrollmentID uuid.UUID) (*domain.Enrollment, error) {
	enrollment, err := s.Get(ctx, studentID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == domain.EnrollmentStatusDropped {
		return enrollment, nil
	}

	now := time.Now().UTC()
	err = s.enrollmentRepo.UpdateFields(ctx, nil, enrollmentID, map[string]interface{}{
		"status":     domain.EnrollmentStatusDropped,
		"updated_at": now,
	})
	if err != nil {
		return nil, fmt.Errorf("drop enrollment: %w", err)
	}
	return s.enrollmentRepo.GetByID(ctx, nil, enrollmentID)
}

func (s *enrollmentService) Get(ctx context.Context, studentID, enrollmentID uuid.UUID) (*domain.Enrollment, error) {
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
	return enrollment, nil
}

func (s *enrollmentService) ListMine(ctx context.Context, studentID uuid.UUID) ([]*domain.Enrollment, error) {
	return s.enrollmentRepo.ListByStudentID(ctx, nil, studentID)
}
