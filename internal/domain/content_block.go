package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ContentBlock is the smallest authored unit inside a slide. Content shape is
// determined by BlockType; BlockType is immutable after creation. Metadata is
// an opaque style payload not validated against the schema registry.
type ContentBlock struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SlideID uuid.UUID `gorm:"type:uuid;index;not null;column:slide_id" json:"slide_id"`

	BlockOrder int            `gorm:"not null;column:block_order" json:"block_order"`
	BlockType  string         `gorm:"not null;column:block_type" json:"block_type"`
	Content    datatypes.JSON `gorm:"not null;column:content" json:"content"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentBlock) TableName() string { return "content_blocks" }
