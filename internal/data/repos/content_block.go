package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type ContentBlockRepo interface {
	Create(ctx context.Context, tx *gorm.DB, blocks []*domain.ContentBlock) ([]*domain.ContentBlock, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ContentBlock, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.ContentBlock, error)
	GetBySlideID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) ([]*domain.ContentBlock, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteBySlideIDs(ctx context.Context, tx *gorm.DB, slideIDs []uuid.UUID) error
	DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
	// ResolveCourseID follows block -> slide -> lesson -> course in one joined
	// lookup.
	ResolveCourseID(ctx context.Context, tx *gorm.DB, blockID uuid.UUID) (uuid.UUID, bool, error)
	// ResolveCourseIDs maps each found block id to its owning course id.
	ResolveCourseIDs(ctx context.Context, tx *gorm.DB, blockIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

type contentBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return &contentBlockRepo{db: db, log: baseLog.With("repo", "ContentBlockRepo")}
}

func (r *contentBlockRepo) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *contentBlockRepo) Create(ctx context.Context, tx *gorm.DB, blocks []*domain.ContentBlock) ([]*domain.ContentBlock, error) {
	if len(blocks) == 0 {
		return []*domain.ContentBlock{}, nil
	}
	if err := r.resolve(tx).WithContext(ctx).Create(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *contentBlockRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ContentBlock, error) {
	var block domain.ContentBlock
	err := r.resolve(tx).WithContext(ctx).Where("id = ?", id).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *contentBlockRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.ContentBlock, error) {
	var results []*domain.ContentBlock
	if len(ids) == 0 {
		return results, nil
	}
	err := r.resolve(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentBlockRepo) GetBySlideID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) ([]*domain.ContentBlock, error) {
	var results []*domain.ContentBlock
	err := r.resolve(tx).WithContext(ctx).
		Where("slide_id = ?", slideID).
		Order("block_order ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentBlockRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Model(&domain.ContentBlock{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *contentBlockRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.resolve(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.ContentBlock{}).Error
}

func (r *contentBlockRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.ContentBlock{}).Error
}

func (r *contentBlockRepo) DeleteBySlideIDs(ctx context.Context, tx *gorm.DB, slideIDs []uuid.UUID) error {
	if len(slideIDs) == 0 {
		return nil
	}
	return r.resolve(tx).WithContext(ctx).
		Where("slide_id IN ?", slideIDs).
		Delete(&domain.ContentBlock{}).Error
}

func (r *contentBlockRepo) DeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	transaction := r.resolve(tx).WithContext(ctx)
	sub := transaction.Session(&gorm.Session{NewDB: true}).
		Model(&domain.Slide{}).
		Select("id").
		Where("lesson_id IN ?", lessonIDs)
	return transaction.
		Where("slide_id IN (?)", sub).
		Delete(&domain.ContentBlock{}).Error
}

func (r *contentBlockRepo) ResolveCourseID(ctx context.Context, tx *gorm.DB, blockID uuid.UUID) (uuid.UUID, bool, error) {
	var courseID uuid.UUID
	res := r.resolve(tx).WithContext(ctx).
		Table("content_blocks").
		Joins("JOIN slides ON slides.id = content_blocks.slide_id").
		Joins("JOIN lessons ON lessons.id = slides.lesson_id").
		Where("content_blocks.id = ?", blockID).
		Select("lessons.course_id").
		Scan(&courseID)
	if res.Error != nil {
		return uuid.Nil, false, res.Error
	}
	return courseID, res.RowsAffected > 0, nil
}

func (r *contentBlockRepo) ResolveCourseIDs(ctx context.Context, tx *gorm.DB, blockIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := map[uuid.UUID]uuid.UUID{}
	if len(blockIDs) == 0 {
		return out, nil
	}
	type row struct {
		BlockID  uuid.UUID
		CourseID uuid.UUID
	}
	var rows []row
	err := r.resolve(tx).WithContext(ctx).
		Table("content_blocks").
		Joins("JOIN slides ON slides.id = content_blocks.slide_id").
		Joins("JOIN lessons ON lessons.id = slides.lesson_id").
		Where("content_blocks.id IN ?", blockIDs).
		Select("content_blocks.id AS block_id, lessons.course_id AS course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.BlockID] = rw.CourseID
	}
	return out, nil
}
