package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/api/responses"
	"github.com/noormart/noormart-backend/api/validators"
	"github.com/noormart/noormart-backend/internal/checkout"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/logger"
)

type createCheckoutPayload struct {
	Source    string     `json:"source" validate:"required,oneof=cart buy_now"`
	VariantID *uuid.UUID `json:"variantId"`
	Quantity  int        `json:"quantity" validate:"min=0"`
}

type checkoutAddressPayload struct {
	AddressID uuid.UUID `json:"addressId" validate:"required"`
}

type checkoutPaymentPayload struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// CheckoutCreate opens a new draft from the cart or a single buy-now
// line, replacing any prior draft the user had.
func CheckoutCreate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload createCheckoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		source, err := enums.ParseCheckoutSource(payload.Source)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout source"))
			return
		}

		var draft any
		switch source {
		case enums.CheckoutSourceBuyNow:
			if payload.VariantID == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variantId required for buy_now"))
				return
			}
			draft, err = svc.CreateFromBuyNow(ctx, userID, *payload.VariantID, payload.Quantity)
		default:
			draft, err = svc.CreateFromCart(ctx, userID)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func CheckoutGet(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		checkoutID, err := pathUUID(r, "checkoutID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		draft, err := svc.Get(ctx, checkoutID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// CheckoutSetAddress attaches a shipping address and reprices the
// draft against its district.
func CheckoutSetAddress(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		checkoutID, err := pathUUID(r, "checkoutID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload checkoutAddressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		draft, err := svc.SetAddress(ctx, checkoutID, userID, payload.AddressID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func CheckoutSetPaymentMethod(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		checkoutID, err := pathUUID(r, "checkoutID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload checkoutPaymentPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		draft, err := svc.SetPaymentMethod(ctx, checkoutID, userID, method)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}
