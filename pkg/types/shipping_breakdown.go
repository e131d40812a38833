package types

import (
	"database/sql/driver"
	"encoding/json"
)

// ShippingBreakdown itemizes how a delivery charge was assembled. A
// non-empty Reason means no estimate could be produced and all amounts
// are zero.
type ShippingBreakdown struct {
	Base        int    `json:"base"`
	SlabExtra   int    `json:"slabExtra"`
	ItemExtra   int    `json:"itemExtra"`
	BulkyExtra  int    `json:"bulkyExtra"`
	TotalWeight int    `json:"totalWeight"`
	Inside      bool   `json:"inside"`
	District    string `json:"district,omitempty"`
	FreeApplied bool   `json:"freeApplied"`
	Total       int    `json:"total"`
	Reason      string `json:"reason,omitempty"`
}

// Estimated reports whether the breakdown carries a usable charge.
func (s *ShippingBreakdown) Estimated() bool {
	return s != nil && s.Reason == ""
}

// Value serializes the breakdown to JSON.
func (s *ShippingBreakdown) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the breakdown struct.
func (s *ShippingBreakdown) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingBreakdown{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
