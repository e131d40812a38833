package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/pkg/enums"
	"github.com/noormart/noormart-backend/pkg/types"
)

// DeliverySetting is the platform-wide delivery pricing profile.
// Historical rows accumulate but at most one row is active; calculators
// only ever read the active one. Inside-city fees apply when the
// destination district matches InsideCityName.
type DeliverySetting struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	InsideCityName  string            `gorm:"column:inside_city_name;not null"`
	InsideCityFee   int               `gorm:"column:inside_city_fee;not null"`
	OutsideCityFee  int               `gorm:"column:outside_city_fee;not null"`
	FreeAbove       int               `gorm:"column:free_above;not null;default:0"`
	BulkyInsideFee  int               `gorm:"column:bulky_inside_fee;not null;default:0"`
	BulkyOutsideFee int               `gorm:"column:bulky_outside_fee;not null;default:0"`
	CODFeeType      enums.CODFeeType  `gorm:"column:cod_fee_type;not null;default:'slab'"`
	CODExtraFee     int               `gorm:"column:cod_extra_fee;not null;default:0"`
	WeightSlabs     types.WeightSlabs `gorm:"column:weight_slabs;type:jsonb;serializer:json"`
	CODSlabs        types.CODSlabs    `gorm:"column:cod_slabs;type:jsonb;serializer:json"`
	IsActive        bool              `gorm:"column:is_active;not null;default:false"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
