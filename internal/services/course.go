package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type CreateCourseInput struct {
	Slug          string
	TitleEn       string
	TitleFr       string
	DescriptionEn string
	DescriptionFr string
	Tags          []string
}

// UpdateCourseInput carries only the fields the caller supplied; nil means
// leave unchanged.
type UpdateCourseInput struct {
	Slug          *string
	TitleEn       *string
	TitleFr       *string
	DescriptionEn *string
	DescriptionFr *string
	Tags          []string
}

type CourseService interface {
	Create(ctx context.Context, teacherID uuid.UUID, input CreateCourseInput) (*domain.Course, error)
	Get(ctx context.Context, courseID uuid.UUID) (*domain.Course, error)
	ListForTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]*domain.Course, int64, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*domain.Course, int64, error)
	Update(ctx context.Context, teacherID, courseID uuid.UUID, input UpdateCourseInput) (*domain.Course, error)
	Publish(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error)
	Unpublish(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error)
	Archive(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error)
	Delete(ctx context.Context, teacherID, courseID uuid.UUID) error
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	ownership      *OwnershipResolver
	courseRepo     repos.CourseRepo
	lessonRepo     repos.LessonRepo
	slideRepo      repos.SlideRepo
	blockRepo      repos.ContentBlockRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ownership *OwnershipResolver,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	slideRepo repos.SlideRepo,
	blockRepo repos.ContentBlockRepo,
	enrollmentRepo repos.EnrollmentRepo,
) CourseService {
	return &courseService{
		db:             db,
		log:            baseLog.With("service", "CourseService"),
		ownership:      ownership,
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		slideRepo:      slideRepo,
		blockRepo:      blockRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *courseService) Create(ctx context.Context, teacherID uuid.UUID, input CreateCourseInput) (*domain.Course, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if input.TitleEn == "" || input.TitleFr == "" {
		return nil, apperr.Invalid("both title_en and title_fr are required")
	}

	taken, err := s.courseRepo.SlugExists(ctx, nil, input.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("check course slug: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("course slug %q is already taken", input.Slug)
	}

	tags, err := marshalTags(input.Tags)
	if err != nil {
		return nil, err
	}

	course := &domain.Course{
		ID:            uuid.New(),
		Slug:          input.Slug,
		TeacherID:     teacherID,
		TitleEn:       input.TitleEn,
		TitleFr:       input.TitleFr,
		DescriptionEn: input.DescriptionEn,
		DescriptionFr: input.DescriptionFr,
		Status:        domain.CourseStatusDraft,
		Tags:          tags,
	}
	if _, err := s.courseRepo.Create(ctx, nil, []*domain.Course{course}); err != nil {
		s.log.Error("create course failed", "error", err)
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (s *courseService) Get(ctx context.Context, courseID uuid.UUID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course %s not found", courseID)
	}
	return course, nil
}

func (s *courseService) ListForTeacher(ctx context.Context, teacherID uuid.UUID, limit, offset int) ([]*domain.Course, int64, error) {
	return s.courseRepo.ListByTeacherID(ctx, nil, teacherID, limit, offset)
}

func (s *courseService) ListPublished(ctx context.Context, limit, offset int) ([]*domain.Course, int64, error) {
	return s.courseRepo.ListByStatus(ctx, nil, domain.CourseStatusPublished, limit, offset)
}

func (s *courseService) Update(ctx context.Context, teacherID, courseID uuid.UUID, input UpdateCourseInput) (*domain.Course, error) {
	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Slug != nil {
		if err := validateSlug(*input.Slug); err != nil {
			return nil, err
		}
		taken, err := s.courseRepo.SlugExists(ctx, nil, *input.Slug, &courseID)
		if err != nil {
			return nil, fmt.Errorf("check course slug: %w", err)
		}
		if taken {
			return nil, apperr.Conflict("course slug %q is already taken", *input.Slug)
		}
		fields["slug"] = *input.Slug
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
	if input.Tags != nil {
		tags, err := marshalTags(input.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = tags
	}

	if err := s.courseRepo.UpdateFields(ctx, nil, courseID, fields); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return s.Get(ctx, courseID)
}

// Publish moves a course to PUBLISHED and stamps published_at. A course with
// no lessons cannot be published.
func (s *courseService) Publish(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error) {
	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return nil, err
	}

	lessons, err := s.lessonRepo.CountByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}
	if lessons == 0 {
		return nil, apperr.Invalid("cannot publish a course with no lessons")
	}

	now := time.Now().UTC()
	err = s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
		"status":       domain.CourseStatusPublished,
		"published_at": &now,
	})
	if err != nil {
		return nil, fmt.Errorf("publish course: %w", err)
	}
	return s.Get(ctx, courseID)
}

func (s *courseService) Unpublish(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error) {
	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return nil, err
	}
	err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
		"status":       domain.CourseStatusDraft,
		"published_at": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("unpublish course: %w", err)
	}
	return s.Get(ctx, courseID)
}

func (s *courseService) Archive(ctx context.Context, teacherID, courseID uuid.UUID) (*domain.Course, error) {
	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return nil, err
	}
	err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
		"status": domain.CourseStatusArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("archive course: %w", err)
	}
	return s.Get(ctx, courseID)
}

// Delete removes a course and everything under it. Blocked while any ACTIVE
// enrollment remains; the whole cascade commits in one transaction.
func (s *courseService) Delete(ctx context.Context, teacherID, courseID uuid.UUID) error {
	if err := s.ownership.VerifyCourseOwner(ctx, nil, courseID, teacherID); err != nil {
		return err
	}

	active, err := s.enrollmentRepo.CountActiveByCourseID(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if active > 0 {
		return apperr.Invalid("cannot delete course with %d active enrollment(s)", active)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := s.lessonRepo.GetByCourseID(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("load lessons: %w", err)
		}
		lessonIDs := make([]uuid.UUID, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}

		if err := s.blockRepo.DeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
			return fmt.Errorf("delete content blocks: %w", err)
		}
		if err := s.slideRepo.DeleteByLessonIDs(ctx, tx, lessonIDs); err != nil {
			return fmt.Errorf("delete slides: %w", err)
		}
		if err := s.lessonRepo.DeleteByCourseID(ctx, tx, courseID); err != nil {
			return fmt.Errorf("delete lessons: %w", err)
		}

		// Remaining enrollments are DROPPED or COMPLETED; their progress rows
		// go with the course.
		enrollments, err := s.enrollmentRepo.ListByCourseID(ctx, tx, courseID)
		if err != nil {
			return fmt.Errorf("load enrollments: %w", err)
		}
		for _, e := range enrollments {
			if err := tx.Where("enrollment_id = ?", e.ID).Delete(&domain.LessonProgress{}).Error; err != nil {
				return fmt.Errorf("delete lesson progress: %w", err)
			}
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&domain.Enrollment{}).Error; err != nil {
			return fmt.Errorf("delete enrollments: %w", err)
		}

		if err := s.courseRepo.Delete(ctx, tx, courseID); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return nil
	})
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, apperr.Invalid("tags are not serializable").Wrap(err)
	}
	return datatypes.JSON(raw), nil
}
