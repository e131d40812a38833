package delivery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	pkgerrors "github.com/noormart/noormart-backend/pkg/errors"
	"github.com/noormart/noormart-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:delivery_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DeliverySetting{}))

	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc, db
}

func validInput() ActivateInput {
	return ActivateInput{
		InsideCityName: "Dhaka",
		InsideCityFee:  80,
		OutsideCityFee: 150,
		FreeAbove:      3000,
		CODFeeType:     enums.CODFeeTypeSlab,
		WeightSlabs: types.WeightSlabs{
			{UptoGram: 500},
			{UptoGram: 1000, InsideExtra: 20, OutsideExtra: 40},
		},
		CODSlabs: types.CODSlabs{
			{Min: 0, Max: 999, Fee: 10},
			{Min: 1000, Max: 4999, Fee: 20},
		},
	}
}

func TestActivateInstallsSingleActiveRow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	first, err := svc.Activate(ctx, validInput())
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	input := validInput()
	input.InsideCityFee = 90
	second, err := svc.Activate(ctx, input)
	require.NoError(t, err)

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, 90, active.InsideCityFee)

	var count int64
	require.NoError(t, db.Model(&models.DeliverySetting{}).Where("is_active = ?", true).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetActiveWithoutSettings(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestActivateRejectsOverlappingCODSlabs(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	input := validInput()
	input.CODSlabs = types.CODSlabs{
		{Min: 0, Max: 1500, Fee: 10},
		{Min: 1000, Max: 4999, Fee: 20},
	}

	_, err := svc.Activate(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestActivateRejectsMissingCityName(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	input := validInput()
	input.InsideCityName = "   "

	_, err := svc.Activate(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListReturnsHistory(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Activate(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Activate(ctx, validInput())
	require.NoError(t, err)

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)
}
