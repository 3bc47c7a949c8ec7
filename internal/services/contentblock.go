package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/content"
	"github.com/selahstudy/academy-backend/internal/data/repos"
	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/ordering"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type CreateBlockInput struct {
	BlockType string
	Content   json.RawMessage
	Metadata  json.RawMessage
	Position  *int
}

type UpdateBlockInput struct {
	Content  json.RawMessage
	Metadata json.RawMessage
}

type ContentBlockService interface {
	Create(ctx context.Context, teacherID, slideID uuid.UUID, input CreateBlockInput) (*domain.ContentBlock, error)
	Get(ctx context.Context, blockID uuid.UUID) (*domain.ContentBlock, error)
	ListForSlide(ctx context.Context, slideID uuid.UUID) ([]*domain.ContentBlock, error)
	Update(ctx context.Context, teacherID, blockID uuid.UUID, input UpdateBlockInput) (*domain.ContentBlock, error)
	Delete(ctx context.Context, teacherID, blockID uuid.UUID) error
	Duplicate(ctx context.Context, teacherID, blockID uuid.UUID) (*domain.ContentBlock, error)
	Reorder(ctx context.Context, teacherID, slideID uuid.UUID, orders map[uuid.UUID]int) error
	BulkDelete(ctx context.Context, teacherID uuid.UUID, blockIDs []uuid.UUID) error
}

type contentBlockService struct {
	db        *gorm.DB
	log       *logger.Logger
	ownership *OwnershipResolver
	manager   *ordering.Manager
	registry  *content.Registry
	sanitizer *content.Sanitizer
	blockRepo repos.ContentBlockRepo
}

func NewContentBlockService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ownership *OwnershipResolver,
	manager *ordering.Manager,
	registry *content.Registry,
	sanitizer *content.Sanitizer,
	blockRepo repos.ContentBlockRepo,
) ContentBlockService {
	return &contentBlockService{
		db:        db,
		log:       baseLog.With("service", "ContentBlockService"),
		ownership: ownership,
		manager:   manager,
		registry:  registry,
		sanitizer: sanitizer,
		blockRepo: blockRepo,
	}
}

// prepareContent runs the full pipeline for one payload: parse, sanitize,
// then validate against the block type's schema. Validation sees only the
// cleaned payload so nothing stripped by the sanitizer can pass it.
func (s *contentBlockService) prepareContent(t content.BlockType, raw json.RawMessage) (datatypes.JSON, error) {
	payload, err := s.registry.ParsePayload(raw)
	if err != nil {
		return nil, err
	}
	payload = s.sanitizer.SanitizePayload(payload)

	if _, fieldErrs := s.registry.Decode(t, payload); len(fieldErrs) > 0 {
		return nil, apperr.InvalidFields("content payload is invalid", fieldErrs)
	}

	clean, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	return datatypes.JSON(clean), nil
}

func (s *contentBlockService) prepareMetadata(t content.BlockType, raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		defaults, err := json.Marshal(s.registry.DefaultMetadata(t))
		if err != nil {
			return nil, fmt.Errorf("marshal default metadata: %w", err)
		}
		return datatypes.JSON(defaults), nil
	}
	meta, err := s.registry.ParsePayload(raw)
	if err != nil {
		return nil, err
	}
	meta = s.sanitizer.SanitizePayload(meta)
	clean, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return datatypes.JSON(clean), nil
}

func (s *contentBlockService) Create(ctx context.Context, teacherID, slideID uuid.UUID, input CreateBlockInput) (*domain.ContentBlock, error) {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return nil, err
	}
	blockType := content.BlockType(input.BlockType)
	if !blockType.Valid() {
		return nil, apperr.Invalid("unknown block type %q", input.BlockType)
	}

	cleanContent, err := s.prepareContent(blockType, input.Content)
	if err != nil {
		return nil, err
	}
	metadata, err := s.prepareMetadata(blockType, input.Metadata)
	if err != nil {
		return nil, err
	}

	block := &domain.ContentBlock{
		ID:        uuid.New(),
		SlideID:   slideID,
		BlockType: string(blockType),
		Content:   cleanContent,
		Metadata:  metadata,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, shift, err := s.manager.InsertPosition(ctx, tx, ordering.ContentBlocks, slideID, input.Position)
		if err != nil {
			return err
		}
		if shift {
			if err := s.manager.OpenSlot(ctx, tx, ordering.ContentBlocks, slideID, position); err != nil {
				return err
			}
		}
		block.BlockOrder = position
		if _, err := s.blockRepo.Create(ctx, tx, []*domain.ContentBlock{block}); err != nil {
			return fmt.Errorf("create content block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (s *contentBlockService) Get(ctx context.Context, blockID uuid.UUID) (*domain.ContentBlock, error) {
	block, err := s.blockRepo.GetByID(ctx, nil, blockID)
	if err != nil {
		return nil, fmt.Errorf("load content block: %w", err)
	}
	if block == nil {
		return nil, apperr.NotFound("content block %s not found", blockID)
	}
	return block, nil
}

func (s *contentBlockService) ListForSlide(ctx context.Context, slideID uuid.UUID) ([]*domain.ContentBlock, error) {
	return s.blockRepo.GetBySlideID(ctx, nil, slideID)
}

// Update revalidates the payload against the block's existing type; the type
// itself is immutable after creation.
func (s *contentBlockService) Update(ctx context.Context, teacherID, blockID uuid.UUID, input UpdateBlockInput) (*domain.ContentBlock, error) {
	if _, err := s.ownership.VerifyBlockOwner(ctx, nil, blockID, teacherID); err != nil {
		return nil, err
	}
	block, err := s.Get(ctx, blockID)
	if err != nil {
		return nil, err
	}
	blockType := content.BlockType(block.BlockType)

	fields := map[string]interface{}{}
	if len(input.Content) > 0 {
		cleanContent, err := s.prepareContent(blockType, input.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = cleanContent
	}
	if len(input.Metadata) > 0 {
		metadata, err := s.prepareMetadata(blockType, input.Metadata)
		if err != nil {
			return nil, err
		}
		fields["metadata"] = metadata
	}

	if err := s.blockRepo.UpdateFields(ctx, nil, blockID, fields); err != nil {
		return nil, fmt.Errorf("update content block: %w", err)
	}
	return s.Get(ctx, blockID)
}

func (s *contentBlockService) Delete(ctx context.Context, teacherID, blockID uuid.UUID) error {
	if _, err := s.ownership.VerifyBlockOwner(ctx, nil, blockID, teacherID); err != nil {
		return err
	}
	block, err := s.Get(ctx, blockID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.blockRepo.Delete(ctx, tx, blockID); err != nil {
			return fmt.Errorf("delete content block: %w", err)
		}
		return s.manager.CloseGap(ctx, tx, ordering.ContentBlocks, block.SlideID, block.BlockOrder)
	})
}

// Duplicate appends a copy of the block to the end of its slide. Content and
// metadata were sanitized on the way in, so they are copied as stored.
func (s *contentBlockService) Duplicate(ctx context.Context, teacherID, blockID uuid.UUID) (*domain.ContentBlock, error) {
	if _, err := s.ownership.VerifyBlockOwner(ctx, nil, blockID, teacherID); err != nil {
		return nil, err
	}
	source, err := s.Get(ctx, blockID)
	if err != nil {
		return nil, err
	}

	clone := &domain.ContentBlock{
		ID:        uuid.New(),
		SlideID:   source.SlideID,
		BlockType: source.BlockType,
		Content:   source.Content,
		Metadata:  source.Metadata,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := s.manager.NextPosition(ctx, tx, ordering.ContentBlocks, source.SlideID)
		if err != nil {
			return err
		}
		clone.BlockOrder = next
		if _, err := s.blockRepo.Create(ctx, tx, []*domain.ContentBlock{clone}); err != nil {
			return fmt.Errorf("create block copy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

func (s *contentBlockService) Reorder(ctx context.Context, teacherID, slideID uuid.UUID, orders map[uuid.UUID]int) error {
	if _, err := s.ownership.VerifySlideOwner(ctx, nil, slideID, teacherID); err != nil {
		return err
	}
	return s.manager.Renumber(ctx, nil, ordering.ContentBlocks, slideID, orders)
}

// BulkDelete removes blocks that may span several slides and recompacts each
// touched slide so sibling orders stay contiguous.
func (s *contentBlockService) BulkDelete(ctx context.Context, teacherID uuid.UUID, blockIDs []uuid.UUID) error {
	if err := s.ownership.VerifyBlocksOwner(ctx, nil, blockIDs, teacherID); err != nil {
		return err
	}

	blocks, err := s.blockRepo.GetByIDs(ctx, nil, blockIDs)
	if err != nil {
		return fmt.Errorf("load content blocks: %w", err)
	}
	slideIDs := map[uuid.UUID]struct{}{}
	for _, b := range blocks {
		slideIDs[b.SlideID] = struct{}{}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.blockRepo.DeleteByIDs(ctx, tx, blockIDs); err != nil {
			return fmt.Errorf("delete content blocks: %w", err)
		}
		for slideID := range slideIDs {
			remaining, err := s.blockRepo.GetBySlideID(ctx, tx, slideID)
			if err != nil {
				return fmt.Errorf("load remaining blocks: %w", err)
			}
			for i, b := range remaining {
				if b.BlockOrder == i {
					continue
				}
				err := tx.Table("content_blocks").
					Where("id = ?", b.ID).
					UpdateColumn("block_order", i).Error
				if err != nil {
					return fmt.Errorf("compact slide %s: %w", slideID, err)
				}
			}
		}
		return nil
	})
}
