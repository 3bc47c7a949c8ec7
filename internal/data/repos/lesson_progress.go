package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type LessonProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.LessonProgress) ([]*domain.LessonProgress, error)
	GetByEnrollmentAndLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID) (*domain.LessonProgress, error)
	ListByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) ([]*domain.LessonProgress, error)
	CountByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return &lessonProgressRepo{db: db, log: baseLog.With("repo", "LessonProgressRepo")}
}

func (r *lessonProgressRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.LessonProgress) ([]*domain.LessonProgress, error) {
	if len(rows) == 0 {
		return []*domain.LessonProgress{}, nil
	}
	if err := r.resolve(tx).WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *lessonProgressRepo) GetByEnrollmentAndLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uuid.UUID) (*domain.LessonProgress, error) {
	var row domain.LessonProgress
	err := r.resolve(tx).WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *lessonProgressRepo) ListByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID uuid.UUID) ([]*domain.LessonProgress, error) {
	var results []*domain.LessonProgress
	err := r.resolve(tx).WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonProgressRepo) CountByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (int64, error) {
	var count int64
	err := r.resolve(tx).WithContext(ctx).
		Model(&domain.LessonProgress{}).
		Where("lesson_id = ?", lessonID).
		Count(&count).Error
	return count, err
}

func (r *lessonProgressRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Model(&domain.LessonProgress{}).
		Where("id = ?", id).
		Updates(fields).Error
}
