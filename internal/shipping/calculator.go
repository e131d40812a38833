package shipping

import (
	"strings"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/types"
)

const (
	// DefaultItemWeightGram is assumed when a line carries no weight.
	DefaultItemWeightGram = 300

	// ReasonNoSettings marks an estimate skipped for lack of an active
	// delivery-settings record.
	ReasonNoSettings = "no-settings"
	// ReasonNoDistrict marks an estimate skipped for lack of a
	// destination district.
	ReasonNoDistrict = "no-district"
)

// Item is one frozen checkout line as seen by the calculator.
type Item struct {
	Quantity     int
	WeightGram   int
	ExtraShipFee int
	IsBulky      bool
}

// Calculate prices delivery for the given lines against the active
// settings record. It never fails: when no settings exist or no
// district is known it returns a zero total tagged with a reason code
// and callers decide whether an un-priced draft is acceptable.
func Calculate(setting *models.DeliverySetting, district string, subtotal int, items []Item) types.ShippingBreakdown {
	if setting == nil {
		return types.ShippingBreakdown{Reason: ReasonNoSettings}
	}
	district = strings.TrimSpace(district)
	if district == "" {
		return types.ShippingBreakdown{Reason: ReasonNoDistrict}
	}

	if setting.FreeAbove > 0 && subtotal >= setting.FreeAbove {
		return types.ShippingBreakdown{
			District:    district,
			FreeApplied: true,
		}
	}

	inside := strings.EqualFold(district, strings.TrimSpace(setting.InsideCityName))
	base := setting.OutsideCityFee
	if inside {
		base = setting.InsideCityFee
	}

	totalWeight := 0
	itemExtra := 0
	bulkyExtra := 0
	bulkyFee := setting.BulkyOutsideFee
	if inside {
		bulkyFee = setting.BulkyInsideFee
	}
	for _, item := range items {
		weight := item.WeightGram
		if weight <= 0 {
			weight = DefaultItemWeightGram
		}
		totalWeight += weight * item.Quantity
		itemExtra += item.ExtraShipFee * item.Quantity
		if item.IsBulky {
			bulkyExtra += bulkyFee * item.Quantity
		}
	}

	slabExtra := slabIncrement(setting.WeightSlabs, totalWeight, inside)

	return types.ShippingBreakdown{
		Base:        base,
		SlabExtra:   slabExtra,
		ItemExtra:   itemExtra,
		BulkyExtra:  bulkyExtra,
		TotalWeight: totalWeight,
		Inside:      inside,
		District:    district,
		Total:       base + slabExtra + itemExtra + bulkyExtra,
	}
}

// slabIncrement charges the marginal band covering totalWeight. Bands
// are ascending by UptoGram; the charge is the covering band's extra
// minus the previous band's, never negative. Weight past the last
// threshold bills the final band once per whole multiple of its
// threshold.
func slabIncrement(slabs types.WeightSlabs, totalWeight int, inside bool) int {
	if len(slabs) == 0 || totalWeight <= 0 {
		return 0
	}

	prev := 0
	for _, slab := range slabs {
		if slab.UptoGram >= totalWeight {
			increment := slab.ExtraFor(inside) - prev
			if increment < 0 {
				return 0
			}
			return increment
		}
		prev = slab.ExtraFor(inside)
	}

	last := slabs[len(slabs)-1]
	if last.UptoGram <= 0 {
		return 0
	}
	multiples := (totalWeight + last.UptoGram - 1) / last.UptoGram
	return multiples * last.ExtraFor(inside)
}
