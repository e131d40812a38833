package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/pkg/enums"
	"github.com/noormart/noormart-backend/pkg/types"
)

// Checkout is a short-lived priced draft assembled between cart and
// order. At most one draft per user is live at a time; creating a new
// one deletes the prior. Drafts expire lazily after their TTL.
type Checkout struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	Source            enums.CheckoutSource     `gorm:"column:source;not null"`
	Status            enums.CheckoutStatus     `gorm:"column:status;not null;default:'draft'"`
	AddressID         *uuid.UUID               `gorm:"column:address_id;type:uuid"`
	PaymentMethod     *enums.PaymentMethod     `gorm:"column:payment_method"`
	Subtotal          int                      `gorm:"column:subtotal;not null;default:0"`
	ShippingFee       int                      `gorm:"column:shipping_fee;not null;default:0"`
	ShippingEstimated bool                     `gorm:"column:shipping_estimated;not null;default:false"`
	ShippingDetail    *types.ShippingBreakdown `gorm:"column:shipping_detail;type:jsonb;serializer:json"`
	CODFee            int                      `gorm:"column:cod_fee;not null;default:0"`
	Discount          int                      `gorm:"column:discount;not null;default:0"`
	Payable           int                      `gorm:"column:payable;not null;default:0"`
	ExpiresAt         time.Time                `gorm:"column:expires_at;not null"`
	Items             []CheckoutItem           `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// Expired reports whether the draft's TTL has lapsed at the given time.
func (c *Checkout) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CheckoutItem freezes one variant line at draft creation. Price and
// the shipping profile are copied from the variant so later catalog
// edits cannot shift the draft's totals.
type CheckoutItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CheckoutID   uuid.UUID `gorm:"column:checkout_id;type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID    uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Name         string    `gorm:"column:name;not null"`
	SKU          string    `gorm:"column:sku;not null"`
	UnitPrice    int       `gorm:"column:unit_price;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	LineTotal    int       `gorm:"column:line_total;not null"`
	WeightGram   int       `gorm:"column:weight_gram;not null;default:0"`
	ExtraShipFee int       `gorm:"column:extra_ship_fee;not null;default:0"`
	IsBulky      bool      `gorm:"column:is_bulky;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
