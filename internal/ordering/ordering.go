package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selahstudy/academy-backend/internal/domain"
	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

// Collection describes one parent-scoped sibling set with a zero-based
// integer order column.
type Collection struct {
	Table        string
	ParentColumn string
	OrderColumn  string
}

var (
	Slides = Collection{
		Table:        domain.Slide{}.TableName(),
		ParentColumn: "lesson_id",
		OrderColumn:  "slide_order",
	}
	ContentBlocks = Collection{
		Table:        domain.ContentBlock{}.TableName(),
		ParentColumn: "slide_id",
		OrderColumn:  "block_order",
	}
)

// Manager keeps a sibling set's order column contiguous and duplicate-free.
// Compound operations (Renumber, Move) run inside their own transaction; the
// single-statement shifts (OpenSlot, CloseGap) are building blocks for the
// entity services, which call them inside the same transaction as the row
// write they accompany.
type Manager struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManager(db *gorm.DB, baseLog *logger.Logger) *Manager {
	return &Manager{db: db, log: baseLog.With("component", "OrderingManager")}
}

func (m *Manager) resolve(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

// NextPosition returns max(order)+1 among the parent's siblings, 0 when the
// set is empty (max-of-empty counts as -1).
func (m *Manager) NextPosition(ctx context.Context, tx *gorm.DB, col Collection, parentID uuid.UUID) (int, error) {
	transaction := m.resolve(tx)

	var next int
	err := transaction.WithContext(ctx).
		Table(col.Table).
		Where(col.ParentColumn+" = ?", parentID).
		Select(fmt.Sprintf("COALESCE(MAX(%s), -1) + 1", col.OrderColumn)).
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return next, nil
}

// OpenSlot shifts every sibling with order >= position up by one, making room
// for an insert at position.
func (m *Manager) OpenSlot(ctx context.Context, tx *gorm.DB, col Collection, parentID uuid.UUID, position int) error {
	transaction := m.resolve(tx)

	err := transaction.WithContext(ctx).
		Table(col.Table).
		Where(col.ParentColumn+" = ? AND "+col.OrderColumn+" >= ?", parentID, position).
		UpdateColumn(col.OrderColumn, gorm.Expr(col.OrderColumn+" + 1")).Error
	if err != nil {
		return fmt.Errorf("open slot at %d: %w", position, err)
	}
	return nil
}

// CloseGap shifts every sibling with order > removedOrder down by one,
// restoring contiguity after a delete or a move-out.
func (m *Manager) CloseGap(ctx context.Context, tx *gorm.DB, col Collection, parentID uuid.UUID, removedOrder int) error {
	transaction := m.resolve(tx)

	err := transaction.WithContext(ctx).
		Table(col.Table).
		Where(col.ParentColumn+" = ? AND "+col.OrderColumn+" > ?", parentID, removedOrder).
		UpdateColumn(col.OrderColumn, gorm.Expr(col.OrderColumn+" - 1")).Error
	if err != nil {
		return fmt.Errorf("close gap at %d: %w", removedOrder, err)
	}
	return nil
}

// InsertPosition resolves where a new item lands. With no explicit position
// it appends at the end. An explicit position past the end clamps to the
// append slot so a too-large target cannot punch a gap into the set. The
// returned shift flag tells the caller whether OpenSlot must run first.
func (m *Manager) InsertPosition(ctx context.Context, tx *gorm.DB, col Collection, parentID uuid.UUID, explicit *int) (position int, shift bool, err error) {
	next, err := m.NextPosition(ctx, tx, col, parentID)
	if err != nil {
		return 0, false, err
	}
	if explicit == nil || *explicit >= next {
		return next, false, nil
	}
	if *explicit < 0 {
		return 0, false, apperr.Invalid("position must not be negative")
	}
	return *explicit, true, nil
}

// Renumber assigns a complete new ordering to the parent's sibling set. The
// assignment must cover every current sibling exactly once and its values
// must be a permutation of 0..n-1; anything referencing a non-child id fails
// as not found, a sparse or duplicated assignment fails as invalid. No write
// happens unless every precondition holds.
func (m *Manager) Renumber(ctx context.Context, tx *gorm.DB, col Collection, parentID uuid.UUID, assignment map[uuid.UUID]int) error {
	if len(assignment) == 0 {
		return apperr.Invalid("empty order assignment")
	}

	return m.resolve(tx).WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var siblingIDs []uuid.UUID
		if err := txn.Table(col.Table).
			Where(col.ParentColumn+" = ?", parentID).
			Pluck("id", &siblingIDs).Error; err != nil {
			return fmt.Errorf("load sibling ids: %w", err)
		}

		siblings := make(map[uuid.UUID]struct{}, len(siblingIDs))
		for _, id := range siblingIDs {
			siblings[id] = struct{}{}
		}
		for id := range assignment {
			if _, ok := siblings[id]; !ok {
				return apperr.NotFound("item %s does not belong to this collection", id)
			}
		}
		if len(assignment) != len(siblingIDs) {
			return apperr.Invalid("order assignment must cover all %d items, got %d", len(siblingIDs), len(assignment))
		}

		seen := make(map[int]struct{}, len(assignment))
		for id, pos := range assignment {
			if pos < 0 || pos >= len(assignment) {
				return apperr.Invalid("order %d for item %s is out of range 0..%d", pos, id, len(assignment)-1)
			}
			if _, dup := seen[pos]; dup {
				return apperr.Invalid("duplicate order value %d", pos)
			}
			seen[pos] = struct{}{}
		}

		for id, pos := range assignment {
			if err := txn.Table(col.Table).
				Where("id = ?", id).
				UpdateColumn(col.OrderColumn, pos).Error; err != nil {
				return fmt.Errorf("assign order %d to %s: %w", pos, id, err)
			}
		}
		return nil
	})
}

// Move transfers one item between two different parents: the gap left behind
// closes, a slot opens at the target position, and the item's parent and
// order are rewritten, all in one transaction. A nil targetPosition appends
// at the end of the destination. Moving within one parent is not supported;
// that is Renumber's job.
func (m *Manager) Move(ctx context.Context, tx *gorm.DB, col Collection, itemID, oldParentID, newParentID uuid.UUID, targetPosition *int) error {
	if oldParentID == newParentID {
		return apperr.Invalid("source and destination parents are the same; use reorder instead")
	}

	return m.resolve(tx).WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var currentOrder int
		res := txn.Table(col.Table).
			Where("id = ? AND "+col.ParentColumn+" = ?", itemID, oldParentID).
			Select(col.OrderColumn).
			Scan(&currentOrder)
		if res.Error != nil {
			return fmt.Errorf("load item order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("item %s does not belong to the source parent", itemID)
		}

		if err := m.CloseGap(ctx, txn, col, oldParentID, currentOrder); err != nil {
			return err
		}

		target, shift, err := m.InsertPosition(ctx, txn, col, newParentID, targetPosition)
		if err != nil {
			return err
		}
		if shift {
			if err := m.OpenSlot(ctx, txn, col, newParentID, target); err != nil {
				return err
			}
		}

		err = txn.Table(col.Table).
			Where("id = ?", itemID).
			UpdateColumns(map[string]interface{}{
				col.ParentColumn: newParentID,
				col.OrderColumn:  target,
			}).Error
		if err != nil {
			return fmt.Errorf("reparent item: %w", err)
		}
		return nil
	})
}
