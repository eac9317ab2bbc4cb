package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/pkg/auth"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AvailabilityInput captures a requested availability flip.
type AvailabilityInput struct {
	SKUID     uuid.UUID
	Available bool
}

// AvailabilityResult reports the outcome. A blocked publication comes back
// with Allowed=false and a reason instead of an error.
type AvailabilityResult struct {
	Allowed bool        `json:"allowed"`
	Reason  string      `json:"reason,omitempty"`
	SKU     *models.SKU `json:"sku,omitempty"`
}

// Service exposes catalog operations used by provider operators.
type Service interface {
	SetSKUAvailability(ctx context.Context, claims *auth.OperatorClaims, input AvailabilityInput) (*AvailabilityResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) SetSKUAvailability(ctx context.Context, claims *auth.OperatorClaims, input AvailabilityInput) (*AvailabilityResult, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !claims.Role.CanOperateProvider() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if input.SKUID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku id is required")
	}

	var result *AvailabilityResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sku, err := repo.FindSKU(ctx, input.SKUID)
		if err != nil {
			return err
		}
		if sku == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
		}
		if sku.ProviderID != claims.ProviderID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "sku belongs to another provider")
		}

		if sku.IsAvailable == input.Available {
			result = &AvailabilityResult{Allowed: true, SKU: sku}
			return nil
		}

		if input.Available {
			decision := CanPublish(*sku, sku.Stocks)
			if !decision.Allowed {
				result = &AvailabilityResult{Allowed: false, Reason: decision.Reason, SKU: sku}
				return nil
			}
		}

		if err := repo.UpdateSKUAvailability(ctx, sku.ID, input.Available); err != nil {
			return err
		}
		sku.IsAvailable = input.Available

		eventType := enums.EventSKUUnpublished
		var data any = payloads.SKUUnpublishedEvent{
			SKUID:      sku.ID,
			ProductID:  sku.ProductID,
			ProviderID: sku.ProviderID,
		}
		if input.Available {
			eventType = enums.EventSKUPublished
			data = payloads.SKUPublishedEvent{
				SKUID:      sku.ID,
				ProductID:  sku.ProductID,
				ProviderID: sku.ProviderID,
			}
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateSKU,
			AggregateID:   sku.ID,
			Actor: &outbox.ActorRef{
				UserID:     claims.UserID,
				ProviderID: &claims.ProviderID,
				Role:       string(claims.Role),
			},
			Data:    data,
			Version: 1,
		}); err != nil {
			return err
		}

		result = &AvailabilityResult{Allowed: true, SKU: sku}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
