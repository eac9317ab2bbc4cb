// Package refunds orchestrates the full-order refund: an authorized,
// idempotent, dual-replica transaction with one irreversible external side
// effect at its center.
package refunds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/internal/orders"
	"github.com/kaoruharada/marketcore-backend/pkg/auth"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/metrics"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox/payloads"
	"github.com/kaoruharada/marketcore-backend/pkg/stripe"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type refundGateway interface {
	CreateRefund(ctx context.Context, p stripe.RefundParams) (json.RawMessage, error)
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Coordinator executes refunds exactly once per order.
type Coordinator interface {
	Refund(ctx context.Context, claims *auth.OperatorClaims, input RefundInput) (*models.Order, error)
}

// RefundInput carries the refund request payload.
type RefundInput struct {
	OrderID uuid.UUID
	Reason  string
}

type coordinator struct {
	repo    orders.Repository
	tx      txRunner
	gateway refundGateway
	outbox  outboxPublisher
	metrics *metrics.OrderMetrics
	timeout time.Duration
}

// NewCoordinator builds a refund coordinator with the required dependencies.
func NewCoordinator(repo orders.Repository, tx txRunner, gateway refundGateway, publisher outboxPublisher, m *metrics.OrderMetrics, timeout time.Duration) (Coordinator, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("refund gateway required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("refund timeout must be positive")
	}
	return &coordinator{
		repo:    repo,
		tx:      tx,
		gateway: gateway,
		outbox:  publisher,
		metrics: m,
		timeout: timeout,
	}, nil
}

// IdempotencyKey derives the stable gateway dedup token for an order refund.
// The key must never change across retries of the same logical refund.
func IdempotencyKey(providerID, orderID uuid.UUID) string {
	return fmt.Sprintf("commerce/providers/%s/orders/%s-refund", providerID, orderID)
}

// Refund checks preconditions in order (first failure wins, all before any
// side effect), then runs the gateway call and the dual-replica write inside
// one transaction. The deterministic idempotency key makes a retried
// invocation safe: the gateway deduplicates the money movement and
// re-applying the terminal state is a no-op.
func (c *coordinator) Refund(ctx context.Context, claims *auth.OperatorClaims, input RefundInput) (*models.Order, error) {
	started := time.Now()

	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !claims.Role.CanOperateProvider() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := c.repo.FindReplica(ctx, input.OrderID, enums.OrderScopeProvider)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.ProviderID != claims.ProviderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another provider")
	}
	if order.PaymentIntentID == nil || *order.PaymentIntentID == "" {
		// A paid order without its gateway reference is corrupt data, not a
		// caller mistake.
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "order carries no payment intent reference")
	}

	var out *models.Order
	err = c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := c.repo.WithTx(tx)

		// Re-read inside the transaction; the pre-checked copy may be stale.
		current, err := repo.FindReplica(ctx, input.OrderID, enums.OrderScopeProvider)
		if err != nil {
			return err
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := orders.CanRefund(*current); err != nil {
			return err
		}

		gatewayCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		raw, err := c.gateway.CreateRefund(gatewayCtx, stripe.RefundParams{
			PaymentIntentID: *current.PaymentIntentID,
			Reason:          input.Reason,
			ReverseTransfer: current.TransferID != nil && *current.TransferID != "",
			IdempotencyKey:  IdempotencyKey(current.ProviderID, current.ID),
			Metadata: map[string]string{
				"admin_id": claims.UserID.String(),
				"user_id":  current.UserID.String(),
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway refund failed")
		}

		orders.ApplyRefund(current, raw)
		if err := repo.SaveBoth(ctx, *current); err != nil {
			return err
		}

		if err := c.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderRefunded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor: &outbox.ActorRef{
				UserID:     claims.UserID,
				ProviderID: &claims.ProviderID,
				Role:       string(claims.Role),
			},
			Data: payloads.OrderRefundedEvent{
				OrderID:     current.ID,
				UserID:      current.UserID,
				ProviderID:  current.ProviderID,
				AmountCents: current.AmountCents,
				RefundedAt:  time.Now(),
			},
			Version: 1,
		}); err != nil {
			return err
		}

		out = current
		return nil
	})
	if err != nil {
		if c.metrics != nil {
			c.metrics.ObserveRefund("failure", time.Since(started))
		}
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.ObserveRefund("success", time.Since(started))
	}
	return out, nil
}
