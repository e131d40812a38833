package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/noormart/noormart-backend/pkg/logger"
	"github.com/noormart/noormart-backend/pkg/metrics"
)

const defaultExpiryBatchSize = 200

// expiredDraftStore lists and retires lapsed checkout drafts.
type expiredDraftStore interface {
	FindExpiredDraftIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// CheckoutExpiryJobParams configure the draft sweeper.
type CheckoutExpiryJobParams struct {
	Logger    *logger.Logger
	Drafts    expiredDraftStore
	Metrics   *metrics.CheckoutMetrics
	BatchSize int
}

// NewCheckoutExpiryJob builds the cron job that reclaims abandoned
// checkout drafts. Expiry is already enforced lazily on every read, so
// the sweep is hygiene for rows nobody ever touches again.
func NewCheckoutExpiryJob(params CheckoutExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return &checkoutExpiryJob{
		logg:      params.Logger,
		drafts:    params.Drafts,
		metrics:   params.Metrics,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type checkoutExpiryJob struct {
	logg      *logger.Logger
	drafts    expiredDraftStore
	metrics   *metrics.CheckoutMetrics
	batchSize int
	now       func() time.Time
}

func (j *checkoutExpiryJob) Name() string { return "checkout-expiry" }

func (j *checkoutExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	var swept int64
	var errs error

	for {
		ids, err := j.drafts.FindExpiredDraftIDs(ctx, cutoff, j.batchSize)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list expired drafts: %w", err))
			break
		}
		if len(ids) == 0 {
			break
		}

		count, err := j.drafts.MarkExpired(ctx, ids)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark drafts expired: %w", err))
			break
		}
		swept += count
		if j.metrics != nil {
			j.metrics.AddDraftsExpired(int(count))
		}
		if len(ids) < j.batchSize {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": swept})
	j.logg.Info(logCtx, "checkout draft sweep complete")
	return errs
}
