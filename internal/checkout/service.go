package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/shipping"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartReader loads the buyer's active cart.
type CartReader interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

// VariantFinder loads live variants for snapshotting.
type VariantFinder interface {
	GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
}

// AddressReader resolves address-book entries.
type AddressReader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*models.Address, error)
}

// SettingsReader returns the active delivery pricing profile, or nil.
type SettingsReader interface {
	GetActive(ctx context.Context) (*models.DeliverySetting, error)
}

// Service manages the checkout draft lifecycle: a priced, time-boxed
// snapshot between cart and order. Creating a draft deletes the user's
// prior one; drafts never touch stock. Expiry is lazy: any access to
// a lapsed draft behaves as not-found.
type Service interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID) (*models.Checkout, error)
	CreateFromBuyNow(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Checkout, error)
	SetAddress(ctx context.Context, checkoutID, userID, addressID uuid.UUID) (*models.Checkout, error)
	SetPaymentMethod(ctx context.Context, checkoutID, userID uuid.UUID, method enums.PaymentMethod) (*models.Checkout, error)
	Get(ctx context.Context, checkoutID, userID uuid.UUID) (*models.Checkout, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	cart     CartReader
	variants VariantFinder
	address  AddressReader
	settings SettingsReader
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a checkout service with the required dependencies.
func NewService(repo Repository, tx txRunner, cart CartReader, variants VariantFinder, address AddressReader, settings SettingsReader, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant finder required")
	}
	if address == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("delivery settings reader required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cart:     cart,
		variants: variants,
		address:  address,
		settings: settings,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

type draftLine struct {
	variant  *models.ProductVariant
	quantity int
}

func (s *service) CreateFromCart(ctx context.Context, userID uuid.UUID) (*models.Checkout, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.cart.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]draftLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		variant, err := s.variants.GetVariant(ctx, item.VariantID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, draftLine{variant: variant, quantity: item.Quantity})
	}
	return s.createDraft(ctx, userID, enums.CheckoutSourceCart, lines)
}

func (s *service) CreateFromBuyNow(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Checkout, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	return s.createDraft(ctx, userID, enums.CheckoutSourceBuyNow, []draftLine{{variant: variant, quantity: quantity}})
}

// createDraft snapshots the lines, estimates shipping against the
// user's default address, and installs the draft as the user's only
// live one. Stock is untouched: pricing is an estimate, not a
// reservation.
func (s *service) createDraft(ctx context.Context, userID uuid.UUID, source enums.CheckoutSource, lines []draftLine) (*models.Checkout, error) {
	draftID := uuid.New()
	subtotal := 0
	items := make([]models.CheckoutItem, 0, len(lines))
	shipItems := make([]shipping.Item, 0, len(lines))
	for _, line := range lines {
		if !line.variant.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("variant %s is not purchasable", line.variant.Name))
		}
		price := line.variant.EffectivePrice()
		item := models.CheckoutItem{
			ID:           uuid.New(),
			CheckoutID:   draftID,
			ProductID:    line.variant.ProductID,
			VariantID:    line.variant.ID,
			Name:         line.variant.Name,
			SKU:          line.variant.SKU,
			UnitPrice:    price,
			Quantity:     line.quantity,
			LineTotal:    price * line.quantity,
			WeightGram:   line.variant.WeightGram,
			ExtraShipFee: line.variant.ExtraShipFee,
			IsBulky:      line.variant.IsBulky,
		}
		subtotal += item.LineTotal
		items = append(items, item)
		shipItems = append(shipItems, shipping.Item{
			Quantity:     item.Quantity,
			WeightGram:   item.WeightGram,
			ExtraShipFee: item.ExtraShipFee,
			IsBulky:      item.IsBulky,
		})
	}

	setting, err := s.settings.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	district := ""
	if defaultAddr, err := s.address.GetDefault(ctx, userID); err != nil {
		return nil, err
	} else if defaultAddr != nil {
		district = defaultAddr.District
	}
	breakdown := shipping.Calculate(setting, district, subtotal, shipItems)

	draft := &models.Checkout{
		ID:                draftID,
		UserID:            userID,
		Source:            source,
		Status:            enums.CheckoutStatusDraft,
		Subtotal:          subtotal,
		ShippingFee:       breakdown.Total,
		ShippingEstimated: breakdown.Estimated(),
		ShippingDetail:    &breakdown,
		Payable:           subtotal + breakdown.Total,
		ExpiresAt:         s.now().Add(s.ttl),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteDraftsByUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete prior drafts")
		}
		if err := repo.Create(ctx, draft); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	draft.Items = items
	return draft, nil
}

func (s *service) SetAddress(ctx context.Context, checkoutID, userID, addressID uuid.UUID) (*models.Checkout, error) {
	draft, err := s.loadLiveDraft(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	addr, err := s.address.GetByID(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}

	setting, err := s.settings.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	breakdown := shipping.Calculate(setting, addr.District, draft.Subtotal, toShipItems(draft.Items))

	updates := map[string]any{
		"address_id":         addr.ID,
		"shipping_fee":       breakdown.Total,
		"shipping_estimated": breakdown.Estimated(),
		"shipping_detail":    &breakdown,
		"payable":            draft.Subtotal + breakdown.Total + draft.CODFee - draft.Discount,
	}
	if err := s.repo.UpdateFields(ctx, draft.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update draft address")
	}
	return s.Get(ctx, checkoutID, userID)
}

func (s *service) SetPaymentMethod(ctx context.Context, checkoutID, userID uuid.UUID, method enums.PaymentMethod) (*models.Checkout, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	draft, err := s.loadLiveDraft(ctx, checkoutID, userID)
	if err != nil {
		return nil, err
	}

	codFee := 0
	if method.IsCOD() {
		setting, err := s.settings.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		codFee = shipping.CODFee(setting, draft.Subtotal)
	}

	updates := map[string]any{
		"payment_method": method,
		"cod_fee":        codFee,
		"payable":        draft.Subtotal + draft.ShippingFee + codFee - draft.Discount,
	}
	if err := s.repo.UpdateFields(ctx, draft.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update draft payment method")
	}
	return s.Get(ctx, checkoutID, userID)
}

func (s *service) Get(ctx context.Context, checkoutID, userID uuid.UUID) (*models.Checkout, error) {
	return s.loadLiveDraft(ctx, checkoutID, userID)
}

// loadLiveDraft fetches a draft the user may act on. A lapsed TTL is
// surfaced as not-found and the row is flipped to expired on the way
// out.
func (s *service) loadLiveDraft(ctx context.Context, checkoutID, userID uuid.UUID) (*models.Checkout, error) {
	draft, err := s.repo.FindByID(ctx, checkoutID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	if draft.UserID != userID || draft.Status != enums.CheckoutStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	if draft.Expired(s.now()) {
		if _, err := s.repo.MarkExpired(ctx, []uuid.UUID{draft.ID}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire checkout")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout expired")
	}
	return draft, nil
}

func toShipItems(items []models.CheckoutItem) []shipping.Item {
	out := make([]shipping.Item, 0, len(items))
	for _, item := range items {
		out = append(out, shipping.Item{
			Quantity:     item.Quantity,
			WeightGram:   item.WeightGram,
			ExtraShipFee: item.ExtraShipFee,
			IsBulky:      item.IsBulky,
		})
	}
	return out
}
