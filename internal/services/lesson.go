package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type CreateLessonInput struct {
	Slug          string
	LessonOrder   int
	TitleEn       string
	TitleFr       string
	DescriptionEn string
	DescriptionFr string
}

type UpdateLessonInput struct {
	Slug          *string
	LessonOrder   *int
	Status        *string
	TitleEn       *string
	TitleFr       *string
	DescriptionEn *string
	DescriptionFr *string
}

type LessonService interface {
	Create(ctx context.Context, teacherID, courseID uuid.UUID, input CreateLessonInput) (*domain.Lesson, error)
	Get(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error)
	ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Lesson, error)
	Update(ctx context.Context, teacherID, lessonID uuid.UUID, input UpdateLessonInput) (*domain.Lesson, error)
	Delete(ctx context.Context, teacherID, lessonID uuid.UUID) error
}

type lessonService struct {
	db           *gorm.DB
	log          *logger.Logger
	ownership    *OwnershipResolver
	lessonRepo   repos.LessonRepo
	slideRepo    repos.SlideRepo
	blockRepo    repos.ContentBlockRepo
	progressRepo repos.LessonProgressRepo
	counters     EnrollmentCounters
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ownership *OwnershipResolver,
	lessonRepo repos.LessonRepo,
	slideRepo repos.SlideRepo,
	blockRepo repos.ContentBlockRepo,
	progressRepo repos.LessonProgressRepo,
	counters EnrollmentCounters,
) LessonService {
	return &lessonService{
		db:           db,
		log:          baseLog.With("service", "LessonService"),
		ownership:    ownership,
		lessonRepo:   lessonRepo,
		slideRepo:    slideRepo,
		blockRepo:    blockRepo,
		progressRepo: progressRepo,
		counters:     counters,
	}
}

// Create rejects an order already taken within the course instead of
// shifting; lesson ordering is teacher-managed and may carry gaps.
func (s *lessonService) Create(ctx context.Context, teacherID, courseID uuid.UUID, input CreateLessonInput) (*domain.Lesson, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if input.TitleEn == "" || input.TitleFr == "" {
		return nil, apperr.Invalid("both title_en and title_fr are required")
	}
	if input.LessonOrder < 1 {
		return nil, apperr.Invalid("lesson_order must be 1 or greater")
	}

	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return nil, err
	}

	taken, err := s.lessonRepo.SlugExists(ctx, nil, input.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("check lesson slug: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("lesson slug %q is already taken", input.Slug)
	}

	orderTaken, err := s.lessonRepo.OrderExists(ctx, nil, courseID, input.LessonOrder, nil)
	if err != nil {
		return nil, fmt.Errorf("check lesson order: %w", err)
	}
	if orderTaken {
		return nil, apperr.Conflict("lesson order %d is already taken in this course", input.LessonOrder)
	}

	lesson := &domain.Lesson{
		ID:            uuid.New(),
		CourseID:      courseID,
		Slug:          input.Slug,
		LessonOrder:   input.LessonOrder,
		Status:        domain.LessonStatusDraft,
		TitleEn:       input.TitleEn,
		TitleFr:       input.TitleFr,
		DescriptionEn: input.DescriptionEn,
		DescriptionFr: input.DescriptionFr,
	}
	if _, err := s.lessonRepo.Create(ctx, nil, []*domain.Lesson{lesson}); err != nil {
		s.log.Error("create lesson failed", "error", err)
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	if err := s.counters.RecomputeForCourse(ctx, courseID); err != nil {
		s.log.Warn("recompute enrollment counters failed", "error", err, "course_id", courseID)
	}
	return lesson, nil
}

func (s *lessonService) Get(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if lesson == nil {
		return nil, apperr.NotFound("lesson %s not found", lessonID)
	}
	return lesson, nil
}

func (s *lessonService) ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Lesson, error) {
	return s.lessonRepo.GetByCourseID(ctx, nil, courseID)
}

func (s *lessonService) Update(ctx context.Context, teacherID, lessonID uuid.UUID, input UpdateLessonInput) (*domain.Lesson, error) {
	courseID, err := s.ownership.VerifyLessonOwner(ctx, nil, lessonID, teacherID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Slug != nil {
		if err := validateSlug(*input.Slug); err != nil {
			return nil, err
		}
		taken, err := s.lessonRepo.SlugExists(ctx, nil, *input.Slug, &lessonID)
		if err != nil {
			return nil, fmt.Errorf("check lesson slug: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("lesson slug %q is already taken", *input.Slug)
		}
		fields["slug"] = *input.Slug
	}
	if input.LessonOrder != nil {
		if *input.LessonOrder < 1 {
			return nil, apperr.Invalid("lesson_order must be 1 or greater")
		}
		taken, err := s.lessonRepo.OrderExists(ctx, nil, courseID, *input.LessonOrder, &lessonID)
		if err != nil {
			return nil, fmt.Errorf("check lesson order: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("lesson order %d is already taken in this course", *input.LessonOrder)
		}
		fields["lesson_order"] = *input.LessonOrder
	}
	if input.Status != nil {
		if *input.Status != domain.LessonStatusDraft && *input.Status != domain.LessonStatusPublished {
			return nil, apperr.Invalid("unknown lesson status %q", *input.Status)
		}
		fields["status"] = *input.Status
	}
	if input.TitleEn != nil {
		fields["title_en"] = *input.TitleEn
	}
	if input.TitleFr != nil {
		fields["title_fr"] = *input.TitleFr
	}
	if input.DescriptionEn != nil {
		fields["description_en"] = *input.DescriptionEn
	}
	if input.DescriptionFr != nil {
		fields["description_fr"] = *input.DescriptionFr
	}

	if err := s.lessonRepo.UpdateFields(ctx, nil, lessonID, fields); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return s.Get(ctx, lessonID)
}

// Delete removes a lesson and its slides/blocks. Blocked while any progress
// row still references the lesson.
func (s *lessonService) Delete(ctx context.Context, teacherID, lessonID uuid.UUID) error {
	courseID, err := s.ownership.VerifyLessonOwner(ctx, nil, lessonID, teacherID)
	if err != nil {
		return err
	}

	progressRows, err := s.progressRepo.CountByLessonID(ctx, nil, lessonID)
	if err != nil {
		return fmt.Errorf("count progress rows: %w", err)
	}
	if progressRows > 0 {
		return apperr.Invalid("cannot delete lesson with %d progress record(s)", progressRows)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.blockRepo.DeleteByLessonIDs(ctx, tx, []uuid.UUID{lessonID}); err != nil {
			return fmt.Errorf("delete content blocks: %w", err)
		}
		if err := s.slideRepo.DeleteByLessonIDs(ctx, tx, []uuid.UUID{lessonID}); err != nil {
			return fmt.Errorf("delete slides: %w", err)
		}
		if err := s.lessonRepo.Delete(ctx, tx, lessonID); err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.counters.RecomputeForCourse(ctx, courseID); err != nil {
		s.log.Warn("recompute enrollment counters failed", "error", err, "course_id", courseID)
	}
	return nil
}
