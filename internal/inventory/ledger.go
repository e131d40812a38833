package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

// Ledger performs atomic stock accounting on product variants. Every
// mutation is a single conditional UPDATE so concurrent callers cannot
// drive reserved_qty outside 0 <= reserved <= stock; a zero-row result
// means the guard failed.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	// Reserve claims qty units of available stock.
	Reserve(ctx context.Context, variantID uuid.UUID, qty int) error
	// Commit deducts qty previously reserved units from on-hand stock.
	Commit(ctx context.Context, variantID uuid.UUID, qty int) error
	// Release returns qty reserved units to the available pool.
	Release(ctx context.Context, variantID uuid.UUID, qty int) error
	// Restore adds qty units back to on-hand stock after a cancellation.
	Restore(ctx context.Context, variantID uuid.UUID, qty int) error
	// SetStock overwrites on-hand stock, never below current reservations.
	SetStock(ctx context.Context, variantID uuid.UUID, qty int) error
}

type ledger struct {
	db *gorm.DB
}

// NewLedger builds a stock ledger bound to the provided DB.
func NewLedger(db *gorm.DB) (Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &ledger{db: db}, nil
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledger{db: tx}
}

func (l *ledger) Reserve(ctx context.Context, variantID uuid.UUID, qty int) error {
	if err := validateQty(variantID, qty); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET reserved_qty = reserved_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_qty - reserved_qty >= ?
	`, qty, variantID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 0 {
		return l.guardFailure(ctx, variantID, "insufficient available stock")
	}
	return nil
}

func (l *ledger) Commit(ctx context.Context, variantID uuid.UUID, qty int) error {
	if err := validateQty(variantID, qty); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET stock_qty = stock_qty - ?,
			reserved_qty = reserved_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reserved_qty >= ?
	`, qty, qty, variantID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "commit stock")
	}
	if res.RowsAffected == 0 {
		return l.guardFailure(ctx, variantID, "commit exceeds reserved stock")
	}
	return nil
}

func (l *ledger) Release(ctx context.Context, variantID uuid.UUID, qty int) error {
	if err := validateQty(variantID, qty); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET reserved_qty = reserved_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reserved_qty >= ?
	`, qty, variantID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		return l.guardFailure(ctx, variantID, "release exceeds reserved stock")
	}
	return nil
}

func (l *ledger) Restore(ctx context.Context, variantID uuid.UUID, qty int) error {
	if err := validateQty(variantID, qty); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET stock_qty = stock_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, variantID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return nil
}

func (l *ledger) SetStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	if variantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	res := l.db.WithContext(ctx).Exec(`
		UPDATE product_variants
		SET stock_qty = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND reserved_qty <= ?
	`, qty, variantID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "set stock")
	}
	if res.RowsAffected == 0 {
		return l.guardFailure(ctx, variantID, "stock below reserved quantity")
	}
	return nil
}

// guardFailure disambiguates a zero-row conditional update: either the
// variant does not exist or the stock invariant blocked the change.
func (l *ledger) guardFailure(ctx context.Context, variantID uuid.UUID, reason string) error {
	var count int64
	if err := l.db.WithContext(ctx).
		Table("product_variants").
		Where("id = ?", variantID).
		Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant existence")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, reason)
}

func validateQty(variantID uuid.UUID, qty int) error {
	if variantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
