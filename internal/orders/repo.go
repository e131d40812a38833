package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noormart/noormart-backend/pkg/db/models"
	"github.com/noormart/noormart-backend/pkg/enums"
	"github.com/noormart/noormart-backend/pkg/pagination"
)

const orderCounterPrefix = "orders:"

// Repository defines persistence operations for confirmed orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLog(ctx context.Context, entry *models.OrderLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// ListByUser pages the user's orders newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	// TransitionStatus moves an order from one status to another,
	// returning how many rows changed; zero means the order moved
	// underneath the caller.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (int64, error)
	// NextOrderNumber allocates the next number in the day's sequence.
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateLog(ctx context.Context, entry *models.OrderLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// NextOrderNumber bumps the day's counter row and formats the order
// number as NR-YYYYMMDD-NNNNN. Callers run it inside the confirmation
// transaction so a rollback returns the number to the pool.
func (r *repository) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	stamp := day.UTC().Format("20060102")
	name := orderCounterPrefix + stamp

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("counters.value + 1")}),
		}).
		Create(&models.Counter{Name: name, Value: 1}).Error
	if err != nil {
		return "", err
	}

	var counter models.Counter
	if err := r.db.WithContext(ctx).First(&counter, "name = ?", name).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("NR-%s-%05d", stamp, counter.Value), nil
}
