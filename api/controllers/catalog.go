package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noormart/noormart-backend/api/responses"
	"github.com/noormart/noormart-backend/api/validators"
	"github.com/noormart/noormart-backend/internal/catalog"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/logger"
)

type variantPayload struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Size          *string `json:"size"`
	Color         *string `json:"color"`
	Price         int     `json:"price" validate:"required,min=1"`
	DiscountPrice *int    `json:"discountPrice"`
	StockQty      int     `json:"stockQty" validate:"min=0"`
	WeightGram    int     `json:"weightGram" validate:"min=0"`
	ExtraShipFee  int     `json:"extraShipFee" validate:"min=0"`
	IsBulky       bool    `json:"isBulky"`
	IsDefault     bool    `json:"isDefault"`
}

type productPayload struct {
	Title      string           `json:"title" validate:"required"`
	Slug       string           `json:"slug" validate:"required"`
	BodyHTML   *string          `json:"bodyHtml"`
	Brand      *string          `json:"brand"`
	CategoryID *uuid.UUID       `json:"categoryId"`
	IsFeatured bool             `json:"isFeatured"`
	Variants   []variantPayload `json:"variants" validate:"required,min=1,dive"`
}

type categoryPayload struct {
	Name      string     `json:"name" validate:"required"`
	Slug      string     `json:"slug" validate:"required"`
	ParentID  *uuid.UUID `json:"parentId"`
	SortOrder int        `json:"sortOrder"`
}

type stockAdjustPayload struct {
	Mode     string `json:"mode" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// ProductCreate registers a product with its variants. Admin surface.
func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload productPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.ProductInput{
			Title:      payload.Title,
			Slug:       payload.Slug,
			BodyHTML:   payload.BodyHTML,
			Brand:      payload.Brand,
			CategoryID: payload.CategoryID,
			IsFeatured: payload.IsFeatured,
		}
		for _, v := range payload.Variants {
			input.Variants = append(input.Variants, catalog.VariantInput{
				SKU:           v.SKU,
				Name:          v.Name,
				Size:          v.Size,
				Color:         v.Color,
				Price:         v.Price,
				DiscountPrice: v.DiscountPrice,
				StockQty:      v.StockQty,
				WeightGram:    v.WeightGram,
				ExtraShipFee:  v.ExtraShipFee,
				IsBulky:       v.IsBulky,
				IsDefault:     v.IsDefault,
			})
		}

		product, err := svc.CreateProduct(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductGet resolves a product by id or slug.
func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		raw := strings.TrimSpace(chi.URLParam(r, "productID"))
		if id, err := uuid.Parse(raw); err == nil {
			product, err := svc.GetProduct(ctx, id)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, product)
			return
		}
		product, err := svc.GetProductBySlug(ctx, raw)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func VariantGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		variantID, err := pathUUID(r, "variantID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		variant, err := svc.GetVariant(ctx, variantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"variant":         variant,
			"availableStock":  variant.AvailableStock(),
			"discountPercent": catalog.DiscountPercent(variant),
		})
	}
}

// VariantAdjustStock applies a manual ledger adjustment. Admin surface.
func VariantAdjustStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		variantID, err := pathUUID(r, "variantID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload stockAdjustPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		mode, err := enums.ParseStockMode(payload.Mode)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock mode"))
			return
		}
		variant, err := svc.AdjustStock(ctx, variantID, mode, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

func CategoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload categoryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		category, err := svc.CreateCategory(ctx, catalog.CategoryInput{
			Name:      payload.Name,
			Slug:      payload.Slug,
			ParentID:  payload.ParentID,
			SortOrder: payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func CategoryTree(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tree, err := svc.CategoryTree(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tree)
	}
}
