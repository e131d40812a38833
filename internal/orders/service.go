package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/cart"
	"github.com/noormart/noormart-backend/internal/checkout"
	"github.com/noormart/noormart-backend/internal/inventory"
	"github.com/noormart/noormart-backend/internal/shipping"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/metrics"
	"github.com/noormart/noormart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressReader resolves the draft's attached shipping address.
type AddressReader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
}

// SettingsReader returns the active delivery pricing profile, or nil.
type SettingsReader interface {
	GetActive(ctx context.Context) (*models.DeliverySetting, error)
}

// ListResult is one page of a user's order history.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// Service owns order confirmation and the post-confirmation status
// lifecycle. Confirm is the storefront's core state transition: one
// transaction that consumes the draft, decrements stock, and writes
// the order with its first log entry.
type Service interface {
	Confirm(ctx context.Context, userID, checkoutID uuid.UUID, method enums.PaymentMethod) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, note string) (*models.Order, error)
	Get(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    inventory.Ledger
	draftRepo checkout.Repository
	cartRepo  cart.Repository
	address   AddressReader
	settings  SettingsReader
	metrics   *metrics.CheckoutMetrics
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, tx txRunner, ledger inventory.Ledger, draftRepo checkout.Repository, cartRepo cart.Repository, address AddressReader, settings SettingsReader, m *metrics.CheckoutMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if draftRepo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if address == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("delivery settings reader required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    ledger,
		draftRepo: draftRepo,
		cartRepo:  cartRepo,
		address:   address,
		settings:  settings,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// Confirm turns a live draft into an order. Availability is re-checked
// against present stock, not the stock at draft creation; the draft's
// snapshot prices are honored either way. Everything happens in one
// transaction so a failed line leaves no partial stock deduction, no
// order, and an untouched cart.
func (s *service) Confirm(ctx context.Context, userID, checkoutID uuid.UUID, method enums.PaymentMethod) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		draftRepo := s.draftRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		draft, err := s.loadConfirmableDraft(ctx, draftRepo, checkoutID, userID)
		if err != nil {
			return err
		}
		if draft.AddressID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
		}
		addr, err := s.address.GetByID(ctx, *draft.AddressID, userID)
		if err != nil {
			return err
		}

		for _, item := range draft.Items {
			if err := ledger.Reserve(ctx, item.VariantID, item.Quantity); err != nil {
				return s.stockFailure(err, item.Name)
			}
			if err := ledger.Commit(ctx, item.VariantID, item.Quantity); err != nil {
				return s.stockFailure(err, item.Name)
			}
		}

		number, err := repo.NextOrderNumber(ctx, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		codFee := 0
		if method.IsCOD() {
			setting, err := s.settings.GetActive(ctx)
			if err != nil {
				return err
			}
			codFee = shipping.CODFee(setting, draft.Subtotal)
		}
		paymentStatus := enums.PaymentStatusPaid
		if method.IsCOD() {
			paymentStatus = enums.PaymentStatusPending
		}

		orderID = uuid.New()
		order := &models.Order{
			ID:             orderID,
			OrderNumber:    number,
			UserID:         userID,
			CheckoutID:     draft.ID,
			Status:         enums.OrderStatusPending,
			PaymentMethod:  method,
			PaymentStatus:  paymentStatus,
			Subtotal:       draft.Subtotal,
			ShippingFee:    draft.ShippingFee,
			ShippingDetail: draft.ShippingDetail,
			CODFee:         codFee,
			Discount:       draft.Discount,
			Payable:        draft.Subtotal + draft.ShippingFee + codFee - draft.Discount,
			ShipName:       addr.Name,
			ShipPhone:      addr.Phone,
			ShipLine1:      addr.Line1,
			ShipLine2:      addr.Line2,
			ShipDistrict:   addr.District,
			ShipPostcode:   addr.Postcode,
			Items:          make([]models.OrderItem, 0, len(draft.Items)),
			Logs: []models.OrderLog{{
				ID:     uuid.New(),
				Status: enums.OrderStatusPending,
				Note:   "Order placed",
			}},
		}
		for _, item := range draft.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Name:      item.Name,
				SKU:       item.SKU,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				LineTotal: item.LineTotal,
			})
		}
		order.Logs[0].OrderID = orderID

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		rows, err := draftRepo.CompleteDraft(ctx, draft.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete checkout")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already consumed")
		}

		if draft.Source == enums.CheckoutSourceCart {
			userCart, err := cartRepo.FindByUser(ctx, userID)
			if err != nil && err != gorm.ErrRecordNotFound {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
			}
			if userCart != nil {
				if err := cartRepo.DeleteItems(ctx, userCart.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderConfirmed(method.String())
	return s.repo.FindByID(ctx, orderID)
}

// loadConfirmableDraft applies the same visibility rules as the draft
// manager: wrong owner, consumed, or lapsed drafts all read as
// not-found, and a lapsed one is flipped to expired on the way out.
func (s *service) loadConfirmableDraft(ctx context.Context, draftRepo checkout.Repository, checkoutID, userID uuid.UUID) (*models.Checkout, error) {
	draft, err := draftRepo.FindByID(ctx, checkoutID)
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
		if _, err := draftRepo.MarkExpired(ctx, []uuid.UUID{draft.ID}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire checkout")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout expired")
	}
	if len(draft.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout has no items")
	}
	return draft, nil
}

// stockFailure rewraps a ledger conflict with the offending line name
// so clients can point the user at the item to fix.
func (s *service) stockFailure(err error, itemName string) error {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeConflict {
		s.metrics.IncReservationConflict()
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", itemName))
	}
	if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is no longer available", itemName))
	}
	return err
}

var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:  {enums.OrderStatusReturned},
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus advances an order through its lifecycle and appends the
// audit log entry. Cancellation is the only transition that puts stock
// back, and the status guard on the UPDATE makes a racing double
// cancel restore at most once.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, note string) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == status {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", status))
	}
	if !transitionAllowed(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if note == "" {
		note = fmt.Sprintf("Status changed to %s", status)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		extra := map[string]any{}
		if status == enums.OrderStatusDelivered {
			extra["delivered_at"] = s.now()
		}

		rows, err := repo.TransitionStatus(ctx, order.ID, order.Status, status, extra)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if status == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := ledger.Restore(ctx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return repo.CreateLog(ctx, &models.OrderLog{
			ID:      uuid.New(),
			OrderID: order.ID,
			Status:  status,
			Note:    note,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

func (s *service) Get(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
