package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/pkg/auth"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox/payloads"
	"github.com/kaoruharada/marketcore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order lifecycle operations.
type Service interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	GetProviderOrder(ctx context.Context, claims *auth.OperatorClaims, orderID uuid.UUID) (*models.Order, error)
	ListProviderOrders(ctx context.Context, claims *auth.OperatorClaims, params pagination.Params) (*OrderPage, error)
	ApplyPaymentOutcome(ctx context.Context, orderID uuid.UUID, outcome PaymentOutcome) error
	SetDeliveryStatus(ctx context.Context, claims *auth.OperatorClaims, orderID uuid.UUID, next enums.DeliveryStatus) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	order, err := s.repo.FindReplica(ctx, orderID, enums.OrderScopeCustomer)
	if err != nil {
		return nil, err
	}
	// Another user's order reads as absent, not forbidden.
	if order == nil || order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) GetProviderOrder(ctx context.Context, claims *auth.OperatorClaims, orderID uuid.UUID) (*models.Order, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !claims.Role.CanOperateProvider() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindReplica(ctx, orderID, enums.OrderScopeProvider)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.ProviderID != claims.ProviderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another provider")
	}
	return order, nil
}

// OrderPage is one keyset page of provider orders. NextCursor is empty on
// the last page.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

func (s *service) ListProviderOrders(ctx context.Context, claims *auth.OperatorClaims, params pagination.Params) (*OrderPage, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !claims.Role.CanOperateProvider() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByProvider(ctx, claims.ProviderID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, err
	}

	page := &OrderPage{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// ApplyPaymentOutcome records a terminal charge result on both replicas and
// queues the matching lifecycle event. Invoked by the payment webhook.
func (s *service) ApplyPaymentOutcome(ctx context.Context, orderID uuid.UUID, outcome PaymentOutcome) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindReplica(ctx, orderID, enums.OrderScopeProvider)
		if err != nil {
			return err
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		if err := ApplyPaymentOutcome(order, outcome); err != nil {
			return err
		}
		if err := repo.SaveBoth(ctx, *order); err != nil {
			return err
		}

		if outcome.Succeeded {
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.OrderPaidEvent{
					OrderID:         order.ID,
					UserID:          order.UserID,
					ProviderID:      order.ProviderID,
					Currency:        order.Currency,
					AmountCents:     order.AmountCents,
					PaymentIntentID: outcome.PaymentIntentID,
					PaidAt:          derefTime(order.PaidAt),
				},
				Version: 1,
			})
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderPaymentFailedEvent{
				OrderID:         order.ID,
				UserID:          order.UserID,
				ProviderID:      order.ProviderID,
				PaymentIntentID: outcome.PaymentIntentID,
			},
			Version: 1,
		})
	})
}

func (s *service) SetDeliveryStatus(ctx context.Context, claims *auth.OperatorClaims, orderID uuid.UUID, next enums.DeliveryStatus) (*models.Order, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !claims.Role.CanOperateProvider() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindReplica(ctx, orderID, enums.OrderScopeProvider)
		if err != nil {
			return err
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.ProviderID != claims.ProviderID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another provider")
		}

		if err := TransitionDelivery(order, next); err != nil {
			return err
		}
		if err := repo.SaveBoth(ctx, *order); err != nil {
			return err
		}

		if next == enums.DeliveryStatusDelivered {
			err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderDelivered,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor: &outbox.ActorRef{
					UserID:     claims.UserID,
					ProviderID: &claims.ProviderID,
					Role:       string(claims.Role),
				},
				Data: payloads.OrderDeliveredEvent{
					OrderID:     order.ID,
					UserID:      order.UserID,
					ProviderID:  order.ProviderID,
					DeliveredAt: time.Now(),
				},
				Version: 1,
			})
			if err != nil {
				return err
			}
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
