package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

// OwnershipResolver verifies that a requesting teacher owns the course that
// transitively contains an entity, however deep it sits. It is a pure
// authorization predicate; success returns the resolved course id and nothing
// else, failure is NotFound or Forbidden.
type OwnershipResolver struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	lessonRepo repos.LessonRepo
	slideRepo  repos.SlideRepo
	blockRepo  repos.ContentBlockRepo
}

func NewOwnershipResolver(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	slideRepo repos.SlideRepo,
	blockRepo repos.ContentBlockRepo,
) *OwnershipResolver {
	return &OwnershipResolver{
		db:         db,
		log:        baseLog.With("service", "OwnershipResolver"),
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		slideRepo:  slideRepo,
		blockRepo:  blockRepo,
	}
}

// VerifyCourseOwner is the root check every deeper verification delegates to.
// The Forbidden branch deliberately reveals nothing beyond the denial.
func (o *OwnershipResolver) VerifyCourseOwner(ctx context.Context, tx *gorm.DB, courseID, teacherID uuid.UUID) error {
	course, err := o.courseRepo.GetByID(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("load course owner: %w", err)
	}
	if course == nil {
		return apperr.NotFound("course %s not found", courseID)
	}
	if course.TeacherID != teacherID {
		return apperr.Forbidden("you do not own this course")
	}
	return nil
}

func (o *OwnershipResolver) VerifyLessonOwner(ctx context.Context, tx *gorm.DB, lessonID, teacherID uuid.UUID) (uuid.UUID, error) {
	courseID, found, err := o.lessonRepo.ResolveCourseID(ctx, tx, lessonID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve lesson course: %w", err)
	}
	if !found {
		return uuid.Nil, apperr.NotFound("lesson %s not found", lessonID)
	}
	if err := o.VerifyCourseOwner(ctx, tx, courseID, teacherID); err != nil {
		return uuid.Nil, err
	}
	return courseID, nil
}

func (o *OwnershipResolver) VerifySlideOwner(ctx context.Context, tx *gorm.DB, slideID, teacherID uuid.UUID) (uuid.UUID, error) {
	courseID, found, err := o.slideRepo.ResolveCourseID(ctx, tx, slideID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve slide course: %w", err)
	}
	if !found {
		return uuid.Nil, apperr.NotFound("slide %s not found", slideID)
	}
	if err := o.VerifyCourseOwner(ctx, tx, courseID, teacherID); err != nil {
		return uuid.Nil, err
	}
	return courseID, nil
}

func (o *OwnershipResolver) VerifyBlockOwner(ctx context.Context, tx *gorm.DB, blockID, teacherID uuid.UUID) (uuid.UUID, error) {
	courseID, found, err := o.blockRepo.ResolveCourseID(ctx, tx, blockID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve block course: %w", err)
	}
	if !found {
		return uuid.Nil, apperr.NotFound("content block %s not found", blockID)
	}
	if err := o.VerifyCourseOwner(ctx, tx, courseID, teacherID); err != nil {
		return uuid.Nil, err
	}
	return courseID, nil
}

// VerifyBlocksOwner authorizes a bulk block operation. Ownership is checked
// once per distinct course touched, not once per block.
func (o *OwnershipResolver) VerifyBlocksOwner(ctx context.Context, tx *gorm.DB, blockIDs []uuid.UUID, teacherID uuid.UUID) error {
	if len(blockIDs) == 0 {
		return apperr.Invalid("empty id list")
	}
	resolved, err := o.blockRepo.ResolveCourseIDs(ctx, tx, blockIDs)
	if err != nil {
		return fmt.Errorf("resolve block courses: %w", err)
	}

	courses := map[uuid.UUID]struct{}{}
	for _, id := range blockIDs {
		courseID, ok := resolved[id]
		if !ok {
			return apperr.NotFound("content block %s not found", id)
		}
		courses[courseID] = struct{}{}
	}
	for courseID := range courses {
		if err := o.VerifyCourseOwner(ctx, tx, courseID, teacherID); err != nil {
			return err
		}
	}
	return nil
}
