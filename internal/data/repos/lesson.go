package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*domain.Lesson) ([]*domain.Lesson, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lesson, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*domain.Lesson, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error)
	OrderExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error)
	CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	// ResolveCourseID follows lesson -> course without loading the course row.
	ResolveCourseID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (uuid.UUID, bool, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*domain.Lesson) ([]*domain.Lesson, error) {
	if len(lessons) == 0 {
		return []*domain.Lesson{}, nil
	}
	if err := r.resolve(tx).WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lesson, error) {
	var lesson domain.Lesson
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*domain.Lesson, error) {
	var results []*domain.Lesson
	err := r.resolve(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("lesson_order ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error) {
	q := r.resolve(tx).WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepo) OrderExists(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int, excludeID *uuid.UUID) (bool, error) {
	q := r.resolve(tx).WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("course_id = ? AND lesson_order = ?", courseID, order)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepo) CountByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.resolve(tx).WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *lessonRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Lesson{}).Error
}

func (r *lessonRepo) DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&domain.Lesson{}).Error
}

func (r *lessonRepo) ResolveCourseID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (uuid.UUID, bool, error) {
	var courseID uuid.UUID
	res := r.resolve(tx).WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("id = ?", lessonID).
		Select("course_id").
		Scan(&courseID)
	if res.Error != nil {
		return uuid.Nil, false, res.Error
	}
	return courseID, res.RowsAffected > 0, nil
}
