package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

func TestReserveAndCommit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 5, 0)
	ledger := newLedger(t, db)

	if err := ledger.Reserve(ctx, variant, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	assertStock(t, db, variant, 5, 3)

	if err := ledger.Commit(ctx, variant, 3); err != nil {
		t.Fatalf("commit: %v", err)
	}
	assertStock(t, db, variant, 2, 0)
}

func TestReserveInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 5, 4)
	ledger := newLedger(t, db)

	err := ledger.Reserve(ctx, variant, 2)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStock(t, db, variant, 5, 4)
}

func TestReserveUnknownVariant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := newLedger(t, db)

	err := ledger.Reserve(context.Background(), uuid.New(), 1)
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseReturnsReservedUnits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 10, 4)
	ledger := newLedger(t, db)

	if err := ledger.Release(ctx, variant, 4); err != nil {
		t.Fatalf("release: %v", err)
	}
	assertStock(t, db, variant, 10, 0)

	err := ledger.Release(ctx, variant, 1)
	if err == nil {
		t.Fatal("expected conflict when releasing below zero")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommitExceedsReserved(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	variant := seedVariant(t, db, 10, 2)
	ledger := newLedger(t, db)

	err := ledger.Commit(context.Background(), variant, 3)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStock(t, db, variant, 10, 2)
}

func TestRestoreAddsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	variant := seedVariant(t, db, 2, 0)
	ledger := newLedger(t, db)

	if err := ledger.Restore(context.Background(), variant, 3); err != nil {
		t.Fatalf("restore: %v", err)
	}
	assertStock(t, db, variant, 5, 0)
}

func TestSetStockRespectsReservations(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	variant := seedVariant(t, db, 10, 4)
	ledger := newLedger(t, db)

	err := ledger.SetStock(ctx, variant, 3)
	if err == nil {
		t.Fatal("expected conflict setting stock below reserved")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ledger.SetStock(ctx, variant, 4); err != nil {
		t.Fatalf("set stock to reserved floor: %v", err)
	}
	assertStock(t, db, variant, 4, 4)
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := newLedger(t, db)

	for _, err := range []error{
		ledger.Reserve(ctx, uuid.Nil, 1),
		ledger.Reserve(ctx, uuid.New(), 0),
		ledger.Release(ctx, uuid.New(), -1),
		ledger.SetStock(ctx, uuid.New(), -5),
	} {
		if err == nil {
			t.Fatal("expected validation error")
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func newLedger(t *testing.T, db *gorm.DB) Ledger {
	t.Helper()
	ledger, err := NewLedger(db)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger
}

func seedVariant(t *testing.T, db *gorm.DB, stock, reserved int) uuid.UUID {
	t.Helper()
	variant := models.ProductVariant{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		SKU:         "SKU-" + uuid.NewString()[:8],
		Name:        "test variant",
		Price:       100,
		StockQty:    stock,
		ReservedQty: reserved,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant.ID
}

func assertStock(t *testing.T, db *gorm.DB, variantID uuid.UUID, stock, reserved int) {
	t.Helper()
	var variant models.ProductVariant
	if err := db.First(&variant, "id = ?", variantID).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if variant.StockQty != stock || variant.ReservedQty != reserved {
		t.Fatalf("unexpected stock state: stock=%d reserved=%d", variant.StockQty, variant.ReservedQty)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ProductVariant{}); err != nil {
		t.Fatalf("migrate variants: %v", err)
	}
	return db
}
