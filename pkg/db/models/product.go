package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the canonical storefront listing. Sellable stock lives on
// its variants.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID  *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Title       string           `gorm:"column:title;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex"`
	BodyHTML    *string          `gorm:"column:body_html"`
	Brand       *string          `gorm:"column:brand"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool             `gorm:"column:is_featured;not null;default:false"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
