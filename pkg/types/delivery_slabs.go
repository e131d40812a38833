package types

import (
	"database/sql/driver"
	"encoding/json"
)

// WeightSlab maps a cumulative weight threshold in grams to the extra
// charge added on top of the base delivery fee, with inside-city and
// outside-city variants. Slabs are stored sorted ascending by UptoGram
// and model marginal cost bands, not cumulative totals.
type WeightSlab struct {
	UptoGram     int `json:"uptoGram"`
	InsideExtra  int `json:"insideExtra"`
	OutsideExtra int `json:"outsideExtra"`
}

// ExtraFor returns the band's extra for the given city side.
func (w WeightSlab) ExtraFor(inside bool) int {
	if inside {
		return w.InsideExtra
	}
	return w.OutsideExtra
}

// WeightSlabs stores the slab table inside a JSONB column.
type WeightSlabs []WeightSlab

// Value serializes the slab table to JSON.
func (w WeightSlabs) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan decodes JSONB into the slab table.
func (w *WeightSlabs) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, w)
}

// CODSlab charges a fee for order subtotals falling within [Min, Max].
type CODSlab struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Fee int `json:"fee"`
}

// CODSlabs stores the COD fee table inside a JSONB column.
type CODSlabs []CODSlab

// Value serializes the COD fee table to JSON.
func (c CODSlabs) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the COD fee table.
func (c *CODSlabs) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}
