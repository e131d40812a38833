package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
)

// Repository defines persistence operations for checkout drafts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, draft *models.Checkout) error
	CreateItems(ctx context.Context, items []models.CheckoutItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	// DeleteDraftsByUser removes the user's live drafts and their lines.
	DeleteDraftsByUser(ctx context.Context, userID uuid.UUID) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutStatus) error
	// CompleteDraft flips a draft to completed, returning how many rows
	// changed; zero means the draft was already consumed or expired.
	CompleteDraft(ctx context.Context, id uuid.UUID) (int64, error)
	// FindExpiredDraftIDs lists drafts whose TTL lapsed before cutoff.
	FindExpiredDraftIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	// MarkExpired flips the listed drafts to expired, returning how
	// many rows actually changed.
	MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, draft *models.Checkout) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.CheckoutItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var draft models.Checkout
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *repository) DeleteDraftsByUser(ctx context.Context, userID uuid.UUID) error {
	// Sqlite test databases do not enforce the cascade, so lines go
	// first.
	err := r.db.WithContext(ctx).
		Where("checkout_id IN (?)", r.db.WithContext(ctx).
			Model(&models.Checkout{}).
			Select("id").
			Where("user_id = ? AND status = ?", userID, enums.CheckoutStatusDraft)).
		Delete(&models.CheckoutItem{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.CheckoutStatusDraft).
		Delete(&models.Checkout{}).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) MarkStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CompleteDraft(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ? AND status = ?", id, enums.CheckoutStatusDraft).
		Update("status", enums.CheckoutStatusCompleted)
	return res.RowsAffected, res.Error
}

func (r *repository) FindExpiredDraftIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("status = ? AND expires_at < ?", enums.CheckoutStatusDraft, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id IN ? AND status = ?", ids, enums.CheckoutStatusDraft).
		Update("status", enums.CheckoutStatusExpired)
	return res.RowsAffected, res.Error
}
