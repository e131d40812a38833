package controllers

import (
	"net/http"

	"github.com/noormart/noormart-backend/api/responses"
	"github.com/noormart/noormart-backend/api/validators"
	"github.com/noormart/noormart-backend/internal/delivery"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/logger"
	"github.com/noormart/noormart-backend/pkg/types"
)

type weightSlabPayload struct {
	UptoGram     int `json:"uptoGram" validate:"required,min=1"`
	InsideExtra  int `json:"insideExtra" validate:"min=0"`
	OutsideExtra int `json:"outsideExtra" validate:"min=0"`
}

type codSlabPayload struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
	Fee int `json:"fee" validate:"min=0"`
}

type deliverySettingsPayload struct {
	InsideCityName  string              `json:"insideCityName" validate:"required"`
	InsideCityFee   int                 `json:"insideCityFee" validate:"min=0"`
	OutsideCityFee  int                 `json:"outsideCityFee" validate:"min=0"`
	FreeAbove       int                 `json:"freeAbove" validate:"min=0"`
	BulkyInsideFee  int                 `json:"bulkyInsideFee" validate:"min=0"`
	BulkyOutsideFee int                 `json:"bulkyOutsideFee" validate:"min=0"`
	CODFeeType      string              `json:"codFeeType" validate:"required"`
	CODExtraFee     int                 `json:"codExtraFee" validate:"min=0"`
	WeightSlabs     []weightSlabPayload `json:"weightSlabs" validate:"dive"`
	CODSlabs        []codSlabPayload    `json:"codSlabs" validate:"dive"`
}

// DeliverySettingsGet returns the active pricing profile, if any.
func DeliverySettingsGet(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		setting, err := svc.GetActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

// DeliverySettingsActivate installs a new pricing profile as the single
// active one. Admin surface.
func DeliverySettingsActivate(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload deliverySettingsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		feeType, err := enums.ParseCODFeeType(payload.CODFeeType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cod fee type"))
			return
		}

		input := delivery.ActivateInput{
			InsideCityName:  payload.InsideCityName,
			InsideCityFee:   payload.InsideCityFee,
			OutsideCityFee:  payload.OutsideCityFee,
			FreeAbove:       payload.FreeAbove,
			BulkyInsideFee:  payload.BulkyInsideFee,
			BulkyOutsideFee: payload.BulkyOutsideFee,
			CODFeeType:      feeType,
			CODExtraFee:     payload.CODExtraFee,
		}
		for _, slab := range payload.WeightSlabs {
			input.WeightSlabs = append(input.WeightSlabs, types.WeightSlab{
				UptoGram:     slab.UptoGram,
				InsideExtra:  slab.InsideExtra,
				OutsideExtra: slab.OutsideExtra,
			})
		}
		for _, slab := range payload.CODSlabs {
			input.CODSlabs = append(input.CODSlabs, types.CODSlab{
				Min: slab.Min,
				Max: slab.Max,
				Fee: slab.Fee,
			})
		}

		setting, err := svc.Activate(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, setting)
	}
}

// DeliverySettingsHistory lists every settings record ever installed.
func DeliverySettingsHistory(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		history, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
