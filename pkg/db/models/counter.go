package models

// Counter backs monotonic per-scope sequences, keyed by name. Order
// numbers use one row per calendar day.
type Counter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}
