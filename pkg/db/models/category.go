package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the storefront category tree.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	SortOrder int        `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
