package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/internal/checkout"
	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	"github.com/noormart/noormart-backend/pkg/logger"
	"github.com/noormart/noormart-backend/pkg/metrics"
)

func newExpiryFixture(t *testing.T) (*gorm.DB, checkout.Repository) {
	t.Helper()
	dsn := "file:cron_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Checkout{}, &models.CheckoutItem{}))
	return db, checkout.NewRepository(db)
}

func seedDraft(t *testing.T, db *gorm.DB, status enums.CheckoutStatus, expiresAt time.Time) uuid.UUID {
	t.Helper()
	draft := models.Checkout{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Source:    enums.CheckoutSourceCart,
		Status:    status,
		Subtotal:  100,
		Payable:   100,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(&draft).Error)
	return draft.ID
}

func TestCheckoutExpiryJobSweepsLapsedDrafts(t *testing.T) {
	t.Parallel()

	db, repo := newExpiryFixture(t)
	lapsed := seedDraft(t, db, enums.CheckoutStatusDraft, time.Now().Add(-time.Hour))
	live := seedDraft(t, db, enums.CheckoutStatusDraft, time.Now().Add(time.Hour))
	completed := seedDraft(t, db, enums.CheckoutStatusCompleted, time.Now().Add(-time.Hour))

	reg := prometheus.NewRegistry()
	funnel := metrics.NewCheckoutMetrics(reg)
	job, err := NewCheckoutExpiryJob(CheckoutExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Drafts:    repo,
		Metrics:   funnel,
		BatchSize: 1,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))

	var stored models.Checkout
	require.NoError(t, db.First(&stored, "id = ?", lapsed).Error)
	assert.Equal(t, enums.CheckoutStatusExpired, stored.Status)

	stored = models.Checkout{}
	require.NoError(t, db.First(&stored, "id = ?", live).Error)
	assert.Equal(t, enums.CheckoutStatusDraft, stored.Status, "live drafts are untouched")

	stored = models.Checkout{}
	require.NoError(t, db.First(&stored, "id = ?", completed).Error)
	assert.Equal(t, enums.CheckoutStatusCompleted, stored.Status, "consumed drafts are untouched")
}

func TestCheckoutExpiryJobIdempotent(t *testing.T) {
	t.Parallel()

	db, repo := newExpiryFixture(t)
	seedDraft(t, db, enums.CheckoutStatusDraft, time.Now().Add(-time.Hour))

	job, err := NewCheckoutExpiryJob(CheckoutExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Drafts: repo,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	var expired int64
	require.NoError(t, db.Model(&models.Checkout{}).
		Where("status = ?", enums.CheckoutStatusExpired).
		Count(&expired).Error)
	assert.EqualValues(t, 1, expired)
}
