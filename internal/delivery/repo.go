package delivery

import (
	"context"

	"gorm.io/gorm"

	"github.com/noormart/noormart-backend/pkg/db/models"
)

// Repository defines persistence operations for delivery settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActive(ctx context.Context) (*models.DeliverySetting, error)
	DeactivateAll(ctx context.Context) error
	Create(ctx context.Context, setting *models.DeliverySetting) error
	List(ctx context.Context) ([]models.DeliverySetting, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActive(ctx context.Context) (*models.DeliverySetting, error) {
	var setting models.DeliverySetting
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliverySetting{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *repository) Create(ctx context.Context, setting *models.DeliverySetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

func (r *repository) List(ctx context.Context) ([]models.DeliverySetting, error) {
	var settings []models.DeliverySetting
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}
