package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogLoader interface {
	FindSKUWithProduct(ctx context.Context, skuID uuid.UUID) (*models.SKU, *models.Product, error)
}

// Service exposes cart mutation and read operations.
type Service interface {
	AddSKU(ctx context.Context, userID uuid.UUID, input AddSKUInput) (*models.CartRecord, error)
	DeleteSKU(ctx context.Context, userID, productID, skuID uuid.UUID) (*models.CartRecord, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
}

// AddSKUInput captures one SKU addition.
type AddSKUInput struct {
	ProductID  uuid.UUID
	SKUID      uuid.UUID
	Quantity   int64
	MediatorID *uuid.UUID
}

type service struct {
	repo    Repository
	catalog catalogLoader
	tx      txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, catalog catalogLoader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx}, nil
}

func (s *service) AddSKU(ctx context.Context, userID uuid.UUID, input AddSKUInput) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	sku, product, err := s.catalog.FindSKUWithProduct(ctx, input.SKUID)
	if err != nil {
		return nil, err
	}
	if sku == nil || product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
	}
	if sku.ProductID != input.ProductID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku does not belong to product")
	}
	if !sku.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sku is not available for sale")
	}

	var out *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			cart, err = repo.Create(ctx, &models.CartRecord{UserID: userID})
			if err != nil {
				return err
			}
		}

		gid := GroupID(sku.ProviderID, product.ID)
		group := FindGroup(cart.Groups, gid)
		if group == nil {
			group = &models.CartGroup{
				CartID:     cart.ID,
				GroupID:    gid,
				ProviderID: sku.ProviderID,
				ProductID:  product.ID,
				Currency:   sku.Currency,
			}
		} else if group.Currency != sku.Currency {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "currency mismatch within cart group")
		}

		line := models.CartLine{
			SKUID:      sku.ID,
			ProductID:  product.ID,
			Quantity:   input.Quantity,
			Currency:   sku.Currency,
			Amount:     sku.PriceCents,
			Discount:   sku.Discount,
			TaxRate:    sku.TaxRate,
			Name:       sku.Name,
			Caption:    sku.Caption,
			Category:   sku.Category,
			MediatorID: input.MediatorID,
		}
		AddSKU(group, line)

		if err := repo.UpsertGroup(ctx, group); err != nil {
			return err
		}

		out, err = repo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) DeleteSKU(ctx context.Context, userID, productID, skuID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var out *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}

		var group *models.CartGroup
		for i := range cart.Groups {
			if cart.Groups[i].ProductID == productID {
				if found := hasLine(cart.Groups[i].Lines, skuID); found {
					group = &cart.Groups[i]
					break
				}
			}
		}
		if group == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sku not in cart")
		}

		DeleteSKU(group, skuID)

		// An emptied group is dropped from the cart, never left behind.
		if len(group.Lines) == 0 {
			if err := repo.DeleteGroup(ctx, group.CartID, group.GroupID); err != nil {
				return err
			}
		} else if err := repo.UpsertGroup(ctx, group); err != nil {
			return err
		}

		out, err = repo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.CartRecord{UserID: userID}, nil
	}
	return cart, nil
}

func hasLine(lines models.CartLines, skuID uuid.UUID) bool {
	for _, line := range lines {
		if line.SKUID == skuID {
			return true
		}
	}
	return false
}
