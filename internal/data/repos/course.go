package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*domain.Course) ([]*domain.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error)
	ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, limit, offset int) ([]*domain.Course, int64, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*domain.Course, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*domain.Course) ([]*domain.Course, error) {
	if len(courses) == 0 {
		return []*domain.Course{}, nil
	}
	if err := r.resolve(tx).WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uuid.UUID) (bool, error) {
	q := r.resolve(tx).WithContext(ctx).
		Model(&domain.Course{}).
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

func (r *courseRepo) ListByTeacherID(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, limit, offset int) ([]*domain.Course, int64, error) {
	transaction := r.resolve(tx).WithContext(ctx)

	var total int64
	if err := transaction.Model(&domain.Course{}).
		Where("teacher_id = ?", teacherID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*domain.Course
	err := transaction.
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit, offset int) ([]*domain.Course, int64, error) {
	transaction := r.resolve(tx).WithContext(ctx)

	var total int64
	if err := transaction.Model(&domain.Course{}).
		Where("status = ?", status).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*domain.Course
	err := transaction.
		Where("status = ?", status).
		Order("published_at DESC").
		Limit(limit).Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Course{}).Error
}

func (r *courseRepo) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.resolve(tx).WithContext(ctx).
		Model(&domain.Course{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}
