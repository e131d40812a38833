package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/pkg/enums"
)

// Address is one entry in a user's address book. At most one address
// per user carries IsDefault.
type Address struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Label     enums.AddressType `gorm:"column:label;not null;default:'Home'"`
	Name      string            `gorm:"column:name;not null"`
	Phone     string            `gorm:"column:phone;not null"`
	Line1     string            `gorm:"column:line1;not null"`
	Line2     *string           `gorm:"column:line2"`
	District  string            `gorm:"column:district;not null"`
	Postcode  *string           `gorm:"column:postcode"`
	IsDefault bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
