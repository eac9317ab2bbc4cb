package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/pagination"
)

// Repository is the dual-replica persistence surface. Writes always touch
// both the customer and provider rows; the two are never independently
// mutable.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindReplica(ctx context.Context, orderID uuid.UUID, scope enums.OrderScope) (*models.Order, error)
	FindReplicaByPaymentIntent(ctx context.Context, paymentIntentID string, scope enums.OrderScope) (*models.Order, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	CreateBoth(ctx context.Context, order models.Order) error
	SaveBoth(ctx context.Context, order models.Order) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindReplica(ctx context.Context, orderID uuid.UUID, scope enums.OrderScope) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_scope = ?", orderID, scope).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindReplicaByPaymentIntent(ctx context.Context, paymentIntentID string, scope enums.OrderScope) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ? AND owner_scope = ?", paymentIntentID, scope).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByProvider scans the provider-scope replicas newest first. The cursor
// pins the keyset position on (created_at, id).
func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("provider_id = ? AND owner_scope = ?", providerID, enums.OrderScopeProvider)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Order
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateBoth(ctx context.Context, order models.Order) error {
	replicas := []models.Order{
		order.CloneForScope(enums.OrderScopeCustomer),
		order.CloneForScope(enums.OrderScopeProvider),
	}
	return r.db.WithContext(ctx).Create(&replicas).Error
}

func (r *repository) SaveBoth(ctx context.Context, order models.Order) error {
	for _, scope := range []enums.OrderScope{enums.OrderScopeCustomer, enums.OrderScopeProvider} {
		replica := order.CloneForScope(scope)
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}, {Name: "owner_scope"}},
				UpdateAll: true,
			}).
			Create(&replica).Error
		if err != nil {
			return err
		}
	}
	return nil
}
