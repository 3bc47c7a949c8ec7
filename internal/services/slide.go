package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/ordering"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

const (
	copySuffixEn = " (Copy)"
	copySuffixFr = " (Copie)"
)

type CreateSlideInput struct {
	Layout   string
	TitleEn  string
	TitleFr  string
	NotesEn  string
	NotesFr  string
	Position *int
}

type UpdateSlideInput struct {
	Layout  *string
	TitleEn *string
	TitleFr *string
	NotesEn *string
	NotesFr *string
}

type SlideService interface {
	Create(ctx context.Context, teacherID, lessonID uuid.UUID, input CreateSlideInput) (*domain.Slide, error)
	Get(ctx context.Context, slideID uuid.UUID) (*domain.Slide, error)
	ListForLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.Slide, error)
	Update(ctx context.Context, teacherID, slideID uuid.UUID, input UpdateSlideInput) (*domain.Slide, error)
	Delete(ctx context.Context, teacherID, slideID uuid.UUID) error
	Duplicate(ctx context.Context, teacherID, slideID uuid.UUID) (*domain.Slide, error)
	Reorder(ctx context.Context, teacherID, lessonID uuid.UUID, orders map[uuid.UUID]int) error
	Move(ctx context.Context, teacherID, slideID, targetLessonID uuid.UUID, position *int) (*domain.Slide, error)
}

type slideService struct {
	db         *gorm.DB
	log        *logger.Logger
	ownership  *OwnershipResolver
	manager    *ordering.Manager
	slideRepo  repos.SlideRepo
	blockRepo  repos.ContentBlockRepo
	lessonRepo repos.LessonRepo
}

func NewSlideService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ownership *OwnershipResolver,
	manager *ordering.Manager,
	slideRepo repos.SlideRepo,
	blockRepo repos.ContentBlockRepo,
	lessonRepo repos.LessonRepo,
) SlideService {
	return &slideService{
		db:         db,
		log:        baseLog.With("service", "SlideService"),
		ownership:  ownership,
		manager:    manager,
		slideRepo:  slideRepo,
		blockRepo:  blockRepo,
		lessonRepo: lessonRepo,
	}
}

func validLayout(layout string) bool {
	switch layout {
	case domain.SlideLayoutDefault, domain.SlideLayoutTwoColumn, domain.SlideLayoutFullBleed:
		return true
	}
	return false
}

// Create inserts at the requested position, shifting later siblings up, or
// appends when no position is given. Shift and insert commit together.
func (s *slideService) Create(ctx context.Context, teacherID, lessonID uuid.UUID, input CreateSlideInput) (*domain.Slide, error) {
	if _, err := s.ownership.VerifyLessonOwner(ctx, nil, lessonID, teacherID); err != nil {
		return nil, err
	}
	layout := input.Layout
	if layout == "" {
		layout = domain.SlideLayoutDefault
	}
	if !validLayout(layout) {
		return nil, apperr.Invalid("unknown slide layout %q", layout)
	}

	slide := &domain.Slide{
		ID:       uuid.New(),
		LessonID: lessonID,
		Layout:   layout,
		TitleEn:  input.TitleEn,
		TitleFr:  input.TitleFr,
		NotesEn:  input.NotesEn,
		NotesFr:  input.NotesFr,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, shift, err := s.manager.InsertPosition(ctx, tx, ordering.Slides, lessonID, input.Position)
		if err != nil {
			return err
		}
		if shift {
			if err := s.manager.OpenSlot(ctx, tx, ordering.Slides, lessonID, position); err != nil {
				return err
			}
		}
		slide.SlideOrder = position
		if _, err := s.slideRepo.Create(ctx, tx, []*domain.Slide{slide}); err != nil {
			return fmt.Errorf("create slide: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slide, nil
}

func (s *slideService) Get(ctx context.Context, slideID uuid.UUID) (*domain.Slide, error) {
	slide, err := s.slideRepo.GetByID(ctx, nil, slideID)
	if err != nil {
		return nil, fmt.Errorf("load slide: %w", err)
	}
	if slide == nil {
		return nil, apperr.NotFound("slide %s not found", slideID)
	}
	return slide, nil
}

func (s *slideService) ListForLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.Slide, error) {
	return s.slideRepo.GetByLessonID(ctx, nil, lessonID)
}

func (s *slideService) Update(ctx context.Context, teacherID, slideID uuid.UUID, input UpdateSlideInput) (*domain.Slide, error) {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Layout != nil {
		if !validLayout(*input.Layout) {
			return nil, apperr.Invalid("unknown slide layout %q", *input.Layout)
		}
		fields["layout"] = *input.Layout
	}
	if input.TitleEn != nil {
		fields["title_en"] = *input.TitleEn
	}
	if input.TitleFr != nil {
		fields["title_fr"] = *input.TitleFr
	}
	if input.NotesEn != nil {
		fields["notes_en"] = *input.NotesEn
	}
	if input.NotesFr != nil {
		fields["notes_fr"] = *input.NotesFr
	}

	if err := s.slideRepo.UpdateFields(ctx, nil, slideID, fields); err != nil {
		return nil, fmt.Errorf("update slide: %w", err)
	}
	return s.Get(ctx, slideID)
}

// Delete removes the slide with its blocks and closes the order gap, all in
// one transaction; a crash between delete and compaction would leave a
// permanent gap.
func (s *slideService) Delete(ctx context.Context, teacherID, slideID uuid.UUID) error {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return err
	}
	slide, err := s.Get(ctx, slideID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.blockRepo.DeleteBySlideIDs(ctx, tx, []uuid.UUID{slideID}); err != nil {
			return fmt.Errorf("delete content blocks: %w", err)
		}
		if err := s.slideRepo.Delete(ctx, tx, slideID); err != nil {
			return fmt.Errorf("delete slide: %w", err)
		}
		return s.manager.CloseGap(ctx, tx, ordering.Slides, slide.LessonID, slide.SlideOrder)
	})
}

// Duplicate clones the slide and its blocks to the end of the same lesson,
// suffixing the titles per locale.
func (s *slideService) Duplicate(ctx context.Context, teacherID, slideID uuid.UUID) (*domain.Slide, error) {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return nil, err
	}
	source, err := s.Get(ctx, slideID)
	if err != nil {
		return nil, err
	}

	clone := &domain.Slide{
		ID:       uuid.New(),
		LessonID: source.LessonID,
		Layout:   source.Layout,
		TitleEn:  suffixTitle(source.TitleEn, copySuffixEn),
		TitleFr:  suffixTitle(source.TitleFr, copySuffixFr),
		NotesEn:  source.NotesEn,
		NotesFr:  source.NotesFr,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := s.manager.NextPosition(ctx, tx, ordering.Slides, source.LessonID)
		if err != nil {
			return err
		}
		clone.SlideOrder = next
		if _, err := s.slideRepo.Create(ctx, tx, []*domain.Slide{clone}); err != nil {
			return fmt.Errorf("create slide copy: %w", err)
		}

		blocks, err := s.blockRepo.GetBySlideID(ctx, tx, slideID)
		if err != nil {
			return fmt.Errorf("load blocks: %w", err)
		}
		copies := make([]*domain.ContentBlock, 0, len(blocks))
		for _, b := range blocks {
			copies = append(copies, &domain.ContentBlock{
				ID:         uuid.New(),
				SlideID:    clone.ID,
				BlockOrder: b.BlockOrder,
				BlockType:  b.BlockType,
				Content:    b.Content,
				Metadata:   b.Metadata,
			})
		}
		if _, err := s.blockRepo.Create(ctx, tx, copies); err != nil {
			return fmt.Errorf("copy blocks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

func (s *slideService) Reorder(ctx context.Context, teacherID, lessonID uuid.UUID, orders map[uuid.UUID]int) error {
	if _, err := s.ownership.VerifyLessonOwner(ctx, nil, lessonID, teacherID); err != nil {
		return err
	}
	return s.manager.Renumber(ctx, nil, ordering.Slides, lessonID, orders)
}

// Move transfers a slide to another lesson. Both source and destination
// courses must belong to the requesting teacher.
func (s *slideService) Move(ctx context.Context, teacherID, slideID, targetLessonID uuid.UUID, position *int) (*domain.Slide, error) {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return nil, err
	}
	if _, err := s.ownership.VerifyLessonOwner(ctx, nil, targetLessonID, teacherID); err != nil {
		return nil, err
	}
	source, err := s.Get(ctx, slideID)
	if err != nil {
		return nil, err
	}

	if err := s.manager.Move(ctx, nil, ordering.Slides, slideID, source.LessonID, targetLessonID, position); err != nil {
		return nil, err
	}
	return s.Get(ctx, slideID)
}

func suffixTitle(title, suffix string) string {
	if title == "" {
		return title
	}
	return title + suffix
}
