package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	UpsertGroup(ctx context.Context, group *models.CartGroup) error
	DeleteGroup(ctx context.Context, cartID, groupID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Groups").
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) UpsertGroup(ctx context.Context, group *models.CartGroup) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider_id", "product_id", "currency",
				"subtotal_cents", "tax_cents", "total_cents",
				"lines", "updated_at",
			}),
		}).
		Create(group).Error
}

func (r *repository) DeleteGroup(ctx context.Context, cartID, groupID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND group_id = ?", cartID, groupID).
		Delete(&models.CartGroup{}).Error
}
