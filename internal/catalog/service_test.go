package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/inventory"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
	))

	ledger, err := inventory.NewLedger(db)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, ledger)
	require.NoError(t, err)
	return svc, db
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestCreateProductGeneratesSKUs(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Title: "Noor Cotton Panjabi",
		Slug:  "noor-cotton-panjabi",
		Variants: []VariantInput{
			{Size: strPtr("XL"), Color: strPtr("Blue"), Price: 1200, StockQty: 10},
			{Size: strPtr("L"), Color: strPtr("Blue"), Price: 1200, StockQty: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, product.Variants, 2)

	first := product.Variants[0]
	assert.True(t, strings.HasPrefix(first.SKU, "NOORC-BLU-XL-"), "sku %q", first.SKU)
	assert.True(t, first.IsDefault, "first variant becomes default when none flagged")
	assert.False(t, product.Variants[1].IsDefault)
	assert.NotEqual(t, first.SKU, product.Variants[1].SKU)
}

func TestCreateProductRejectsBadDiscount(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Title: "Widget",
		Slug:  "widget",
		Variants: []VariantInput{
			{Price: 100, DiscountPrice: intPtr(100)},
		},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAdjustStockModes(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product, err := svc.CreateProduct(ctx, ProductInput{
		Title:    "Widget",
		Slug:     "widget-modes",
		Variants: []VariantInput{{Price: 100, StockQty: 10}},
	})
	require.NoError(t, err)
	variantID := product.Variants[0].ID

	got, err := svc.AdjustStock(ctx, variantID, enums.StockModeReserve, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQty)
	assert.Equal(t, 4, got.ReservedQty)

	got, err = svc.AdjustStock(ctx, variantID, enums.StockModeCommit, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, got.StockQty)
	assert.Equal(t, 1, got.ReservedQty)

	got, err = svc.AdjustStock(ctx, variantID, enums.StockModeRelease, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReservedQty)

	got, err = svc.AdjustStock(ctx, variantID, enums.StockModeSet, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, got.StockQty)

	var variant models.ProductVariant
	require.NoError(t, db.First(&variant, "id = ?", variantID).Error)
	assert.Equal(t, 20, variant.StockQty)
}

func TestAdjustStockInvalidMode(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.AdjustStock(context.Background(), uuid.New(), enums.StockMode("restock"), 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCategoryTreeNesting(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, CategoryInput{Name: "Men", Slug: "men"})
	require.NoError(t, err)
	child, err := svc.CreateCategory(ctx, CategoryInput{Name: "Panjabi", Slug: "men-panjabi", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Women", Slug: "women"})
	require.NoError(t, err)

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	var men CategoryNode
	for _, node := range tree {
		if node.Slug == "men" {
			men = node
		}
	}
	require.Len(t, men.Children, 1)
	assert.Equal(t, child.ID, men.Children[0].ID)
}

func TestDiscountPercent(t *testing.T) {
	t.Parallel()

	variant := &models.ProductVariant{Price: 1000, DiscountPrice: intPtr(750)}
	assert.Equal(t, "25", DiscountPercent(variant))

	variant.DiscountPrice = intPtr(999)
	assert.Equal(t, "0.1", DiscountPercent(variant))

	assert.Empty(t, DiscountPercent(&models.ProductVariant{Price: 1000}))
	assert.Empty(t, DiscountPercent(nil))
}
