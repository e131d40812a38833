package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// VariantFinder loads live variants for cart validation.
type VariantFinder interface {
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
}

// Service manages the buyer's mutable pre-checkout cart. One cart per
// user; adding an existing variant accumulates quantity.
type Service interface {
	// GetActive returns the user's cart, creating an empty one on
	// first touch.
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Cart, error)
	SetItemQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*models.Cart, error)
	// Clear removes every line from the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	variants VariantFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, tx txRunner, variants VariantFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant finder required")
	}
	return &service{repo: repo, tx: tx, variants: variants}, nil
}

func (s *service) GetActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	fresh := &models.Cart{ID: uuid.New(), UserID: userID}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return fresh, nil
}

func (s *service) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if !variant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant is not purchasable")
	}

	cart, err := s.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindItem(ctx, cart.ID, variantID)
		if err == gorm.ErrRecordNotFound {
			item := &models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				VariantID: variantID,
				Quantity:  quantity,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, userID)
}

func (s *service) SetItemQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	cart, err := s.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, variantID)
	}

	item, err := s.repo.FindItem(ctx, cart.ID, variantID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.reload(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.DeleteItem(ctx, cart.ID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.reload(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.GetActive(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return cart, nil
}
