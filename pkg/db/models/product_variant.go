package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is the sellable SKU-level unit. Stock accounting uses
// two counters: StockQty is on-hand units and ReservedQty is the slice
// of on-hand already claimed by unconfirmed work. Available stock is
// always the difference and the pair holds 0 <= reserved <= stock.
type ProductVariant struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SKU           string    `gorm:"column:sku;not null;uniqueIndex"`
	Name          string    `gorm:"column:name;not null"`
	Size          *string   `gorm:"column:size"`
	Color         *string   `gorm:"column:color"`
	Price         int       `gorm:"column:price;not null"`
	DiscountPrice *int      `gorm:"column:discount_price"`
	StockQty      int       `gorm:"column:stock_qty;not null;default:0"`
	ReservedQty   int       `gorm:"column:reserved_qty;not null;default:0"`
	WeightGram    int       `gorm:"column:weight_gram;not null;default:0"`
	ExtraShipFee  int       `gorm:"column:extra_ship_fee;not null;default:0"`
	IsBulky       bool      `gorm:"column:is_bulky;not null;default:false"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableStock returns the units still open to new reservations.
func (v *ProductVariant) AvailableStock() int {
	available := v.StockQty - v.ReservedQty
	if available < 0 {
		return 0
	}
	return available
}

// EffectivePrice returns the discount price when one is set and lower
// than the list price.
func (v *ProductVariant) EffectivePrice() int {
	if v.DiscountPrice != nil && *v.DiscountPrice > 0 && *v.DiscountPrice < v.Price {
		return *v.DiscountPrice
	}
	return v.Price
}
