package controllers

import (
	"net/http"

	"github.com/noormart/noormart-backend/api/responses"
	"github.com/noormart/noormart-backend/api/validators"
	"github.com/noormart/noormart-backend/internal/address"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/logger"
)

type addressPayload struct {
	Label     string  `json:"label"`
	Name      string  `json:"name" validate:"required"`
	Phone     string  `json:"phone" validate:"required"`
	Line1     string  `json:"line1" validate:"required"`
	Line2     *string `json:"line2"`
	District  string  `json:"district" validate:"required"`
	Postcode  *string `json:"postcode"`
	IsDefault bool    `json:"isDefault"`
}

func (p addressPayload) toInput() (address.Input, error) {
	label := enums.AddressTypeHome
	if p.Label != "" {
		parsed, err := enums.ParseAddressType(p.Label)
		if err != nil {
			return address.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address label")
		}
		label = parsed
	}
	return address.Input{
		Label:     label,
		Name:      p.Name,
		Phone:     p.Phone,
		Line1:     p.Line1,
		Line2:     p.Line2,
		District:  p.District,
		Postcode:  p.Postcode,
		IsDefault: p.IsDefault,
	}, nil
}

func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		list, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload addressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addr, err := svc.Create(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addr)
	}
}

func AddressUpdate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathUUID(r, "addressID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload addressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addr, err := svc.Update(ctx, addressID, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, addr)
	}
}

func AddressDelete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		addressID, err := pathUUID(r, "addressID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, addressID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
