package shipping

import (
	"sort"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/types"
)

// CODFee returns the cash-on-delivery surcharge for a subtotal. With
// the slab fee type the first slab satisfying min <= subtotal <= max
// wins; no match means no fee. The flat fee type charges the settings'
// flat extra regardless of subtotal.
func CODFee(setting *models.DeliverySetting, subtotal int) int {
	if setting == nil {
		return 0
	}
	switch setting.CODFeeType {
	case enums.CODFeeTypeFlat:
		return setting.CODExtraFee
	case enums.CODFeeTypeSlab:
		for _, slab := range setting.CODSlabs {
			if subtotal >= slab.Min && subtotal <= slab.Max {
				return slab.Fee
			}
		}
		return 0
	default:
		return 0
	}
}

// ValidateCODSlabs rejects slab tables that are unsorted, inverted, or
// overlapping. Settings activation runs this before a table goes live
// so the lookup in CODFee never has to disambiguate.
func ValidateCODSlabs(slabs types.CODSlabs) error {
	for i, slab := range slabs {
		if slab.Min < 0 || slab.Max < slab.Min {
			return pkgerrors.New(pkgerrors.CodeValidation, "cod slab bounds invalid")
		}
		if slab.Fee < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cod slab fee must not be negative")
		}
		if i > 0 && slab.Min <= slabs[i-1].Max {
			return pkgerrors.New(pkgerrors.CodeConflict, "cod slabs overlap or are unsorted")
		}
	}
	return nil
}

// ValidateWeightSlabs rejects weight tables that are unsorted or carry
// non-positive thresholds.
func ValidateWeightSlabs(slabs types.WeightSlabs) error {
	if !sort.SliceIsSorted(slabs, func(i, j int) bool { return slabs[i].UptoGram < slabs[j].UptoGram }) {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight slabs must ascend by uptoGram")
	}
	for _, slab := range slabs {
		if slab.UptoGram <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "weight slab threshold must be positive")
		}
		if slab.InsideExtra < 0 || slab.OutsideExtra < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "weight slab extra must not be negative")
		}
	}
	return nil
}
