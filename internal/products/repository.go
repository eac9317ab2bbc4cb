package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
)

// Repository defines the catalog persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSKU(ctx context.Context, skuID uuid.UUID) (*models.SKU, error)
	FindSKUWithProduct(ctx context.Context, skuID uuid.UUID) (*models.SKU, *models.Product, error)
	FindStocks(ctx context.Context, skuID uuid.UUID) ([]models.Stock, error)
	UpdateSKUAvailability(ctx context.Context, skuID uuid.UUID, available bool) error
	AddStock(ctx context.Context, stock *models.Stock) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSKU(ctx context.Context, skuID uuid.UUID) (*models.SKU, error) {
	var sku models.SKU
	err := r.db.WithContext(ctx).
		Preload("Stocks").
		Where("id = ?", skuID).
		First(&sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}

func (r *repository) FindSKUWithProduct(ctx context.Context, skuID uuid.UUID) (*models.SKU, *models.Product, error) {
	sku, err := r.FindSKU(ctx, skuID)
	if err != nil || sku == nil {
		return nil, nil, err
	}

	var product models.Product
	err = r.db.WithContext(ctx).
		Where("id = ?", sku.ProductID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return sku, &product, nil
}

func (r *repository) FindStocks(ctx context.Context, skuID uuid.UUID) ([]models.Stock, error) {
	var stocks []models.Stock
	err := r.db.WithContext(ctx).
		Where("sku_id = ?", skuID).
		Order("created_at ASC").
		Find(&stocks).Error
	return stocks, err
}

func (r *repository) UpdateSKUAvailability(ctx context.Context, skuID uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&models.SKU{}).
		Where("id = ?", skuID).
		Update("is_available", available).Error
}

func (r *repository) AddStock(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}
