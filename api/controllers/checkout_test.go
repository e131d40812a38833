package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/api/middleware"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type stubCheckoutService struct {
	draft *models.Checkout
	err   error
}

func (s stubCheckoutService) CreateFromCart(ctx context.Context, userID uuid.UUID) (*models.Checkout, error) {
	return s.draft, s.err
}

func (s stubCheckoutService) CreateFromBuyNow(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Checkout, error) {
	return s.draft, s.err
}

func (s stubCheckoutService) SetAddress(ctx context.Context, checkoutID, userID, addressID uuid.UUID) (*models.Checkout, error) {
	return s.draft, s.err
}

func (s stubCheckoutService) SetPaymentMethod(ctx context.Context, checkoutID, userID uuid.UUID, method enums.PaymentMethod) (*models.Checkout, error) {
	return s.draft, s.err
}

func (s stubCheckoutService) Get(ctx context.Context, checkoutID, userID uuid.UUID) (*models.Checkout, error) {
	return s.draft, s.err
}

func withIdentity(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func TestCheckoutCreateFromCart(t *testing.T) {
	draft := &models.Checkout{
		ID:     uuid.New(),
		Status: enums.CheckoutStatusDraft,
		Source: enums.CheckoutSourceCart,
	}
	handler := CheckoutCreate(stubCheckoutService{draft: draft}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(`{"source":"cart"}`))
	req = withIdentity(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data models.Checkout `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != draft.ID {
		t.Fatalf("unexpected draft id: %s", envelope.Data.ID)
	}
}

func TestCheckoutCreateBuyNowRequiresVariant(t *testing.T) {
	handler := CheckoutCreate(stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(`{"source":"buy_now","quantity":1}`))
	req = withIdentity(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutCreateRejectsUnknownSource(t *testing.T) {
	handler := CheckoutCreate(stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(`{"source":"wishlist"}`))
	req = withIdentity(req, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutCreateMissingIdentity(t *testing.T) {
	handler := CheckoutCreate(stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", strings.NewReader(`{"source":"cart"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutGetExpiredReadsAsNotFound(t *testing.T) {
	handler := CheckoutGet(stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")}, nil)

	checkoutID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkouts/"+checkoutID.String(), nil)
	req = withIdentity(req, uuid.New())

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("checkoutID", checkoutID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
