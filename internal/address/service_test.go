package address

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
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:address_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Address{}))

	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc, db
}

func sampleInput(isDefault bool) Input {
	return Input{
		Label:     enums.AddressTypeHome,
		Name:      "Rahim Uddin",
		Phone:     "01700000000",
		Line1:     "House 12, Road 5",
		District:  "Dhaka",
		IsDefault: isDefault,
	}
}

func TestCreateClearsPriorDefault(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	var count int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := svc.GetDefault(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestDefaultIsPerUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	_, err := svc.Create(ctx, userA, sampleInput(true))
	require.NoError(t, err)
	_, err = svc.Create(ctx, userB, sampleInput(true))
	require.NoError(t, err)

	gotA, err := svc.GetDefault(ctx, userA)
	require.NoError(t, err)
	require.NotNil(t, gotA)
	gotB, err := svc.GetDefault(ctx, userB)
	require.NoError(t, err)
	require.NotNil(t, gotB)
	assert.NotEqual(t, gotA.ID, gotB.ID)
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	addr, err := svc.Create(ctx, owner, sampleInput(false))
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, addr.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	got, err := svc.GetByID(ctx, addr.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, addr.ID, got.ID)
}

func TestUpdatePromotesDefault(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, sampleInput(true))
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, sampleInput(false))
	require.NoError(t, err)

	input := sampleInput(true)
	input.Label = enums.AddressTypeOffice
	updated, err := svc.Update(ctx, second.ID, userID, input)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, enums.AddressTypeOffice, updated.Label)

	got, err := svc.GetByID(ctx, first.ID, userID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
}

func TestDeleteUnknownAddress(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetDefaultWithoutOne(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	got, err := svc.GetDefault(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	input := sampleInput(false)
	input.District = "  "

	_, err := svc.Create(context.Background(), uuid.New(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
