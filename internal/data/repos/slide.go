package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type SlideRepo interface {
	Create(ctx context.Context, tx *gorm.DB, slides []*domain.Slide) ([]*domain.Slide, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Slide, error)
	GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) ([]*domain.Slide, error)
	CountByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
	// ResolveCourseID follows slide -> lesson -> course in one joined lookup.
	ResolveCourseID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) (uuid.UUID, bool, error)
}

type slideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSlideRepo(db *gorm.DB, baseLog *logger.Logger) SlideRepo {
	return &slideRepo{db: db, log: baseLog.With("repo", "SlideRepo")}
}

func (r *slideRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *slideRepo) Create(ctx context.Context, tx *gorm.DB, slides []*domain.Slide) ([]*domain.Slide, error) {
	if len(slides) == 0 {
		return []*domain.Slide{}, nil
	}
	if err := r.resolve(tx).WithContext(ctx).Create(&slides).Error; err != nil {
		return nil, err
	}
	return slides, nil
}

func (r *slideRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Slide, error) {
	var slide domain.Slide
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&slide).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slide, nil
}

func (r *slideRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) ([]*domain.Slide, error) {
	var results []*domain.Slide
	err := r.resolve(tx).WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("slide_order ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *slideRepo) CountByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error) {
	var count int64
	err := r.resolve(tx).WithContext(ctx).
		Model(&domain.Slide{}).
		Where("lesson_id = ?", lessonID).
		Count(&count).Error
	return count, err
}

func (r *slideRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Model(&domain.Slide{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *slideRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Slide{}).Error
}

func (r *slideRepo) DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Where("lesson_id IN ?", lessonIDs).
		Delete(&domain.Slide{}).Error
}

func (r *slideRepo) ResolveCourseID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) (uuid.UUID, bool, error) {
	var courseID uuid.UUID
	res := r.resolve(tx).WithContext(ctx).
		Table("slides").
		Joins("JOIN lessons ON lessons.id = slides.lesson_id").
		Where("slides.id = ?", slideID).
		Select("lessons.course_id").
		Scan(&courseID)
	if res.Error != nil {
		return uuid.Nil, false, res.Error
	}
	return courseID, res.RowsAffected > 0, nil
}
