package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/pkg/enums"
	"github.com/noormart/noormart-backend/pkg/types"
)

// Order is the confirmed, immutable record produced from a checkout
// draft. Shipping fields are snapshotted by value at confirmation so
// address-book edits never rewrite history.
type Order struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber    string                   `gorm:"column:order_number;not null;uniqueIndex"`
	UserID         uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	CheckoutID     uuid.UUID                `gorm:"column:checkout_id;type:uuid;not null"`
	Status         enums.OrderStatus        `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod  enums.PaymentMethod      `gorm:"column:payment_method;not null"`
	PaymentStatus  enums.PaymentStatus      `gorm:"column:payment_status;not null;default:'pending'"`
	Subtotal       int                      `gorm:"column:subtotal;not null"`
	ShippingFee    int                      `gorm:"column:shipping_fee;not null;default:0"`
	ShippingDetail *types.ShippingBreakdown `gorm:"column:shipping_detail;type:jsonb;serializer:json"`
	CODFee         int                      `gorm:"column:cod_fee;not null;default:0"`
	Discount       int                      `gorm:"column:discount;not null;default:0"`
	Payable        int                      `gorm:"column:payable;not null"`
	ShipName       string                   `gorm:"column:ship_name;not null"`
	ShipPhone      string                   `gorm:"column:ship_phone;not null"`
	ShipLine1      string                   `gorm:"column:ship_line1;not null"`
	ShipLine2      *string                  `gorm:"column:ship_line2"`
	ShipDistrict   string                   `gorm:"column:ship_district;not null"`
	ShipPostcode   *string                  `gorm:"column:ship_postcode"`
	DeliveredAt    *time.Time               `gorm:"column:delivered_at"`
	Items          []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Logs           []OrderLog               `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one confirmed variant line, frozen from the checkout.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	SKU       string    `gorm:"column:sku;not null"`
	UnitPrice int       `gorm:"column:unit_price;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	LineTotal int       `gorm:"column:line_total;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// OrderLog is one append-only entry in the order's status history.
// Rows are never updated or deleted.
type OrderLog struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Note      string            `gorm:"column:note;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
