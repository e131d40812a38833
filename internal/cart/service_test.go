package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type dbVariantFinder struct {
	db *gorm.DB
}

func (f dbVariantFinder) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := f.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, err
	}
	return &variant, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
	))

	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, dbVariantFinder{db: db})
	require.NoError(t, err)
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, active bool) uuid.UUID {
	t.Helper()
	variant := models.ProductVariant{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "variant",
		Price:     100,
		StockQty:  50,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&variant).Error)
	// GORM substitutes the column default for zero-valued fields on
	// insert, so is_active=false must be written with an update.
	require.NoError(t, db.Model(&variant).Update("is_active", active).Error)
	return variant.ID
}

func TestGetActiveCreatesCartOnFirstTouch(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	userID := uuid.New()

	cart, err := svc.GetActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)

	again, err := svc.GetActive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variantID := seedVariant(t, db, true)

	cart, err := svc.AddItem(ctx, userID, variantID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = svc.AddItem(ctx, userID, variantID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemRejectsInactiveVariant(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variantID := seedVariant(t, db, false)

	_, err := svc.AddItem(context.Background(), uuid.New(), variantID, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestSetItemQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	variantID := seedVariant(t, db, true)

	_, err := svc.AddItem(ctx, userID, variantID, 2)
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, userID, variantID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveMissingItem(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.RemoveItem(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.AddItem(ctx, userID, seedVariant(t, db, true), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, seedVariant(t, db, true), 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))

	cart, err := svc.GetActive(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
