// Package stripewebhook turns verified Stripe events into order payment
// outcomes. Deliveries are at-least-once, so every path through here has to
// tolerate replays.
package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/kaoruharada/marketcore-backend/internal/orders"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
	"github.com/kaoruharada/marketcore-backend/pkg/metrics"
)

const metadataOrderID = "order_id"

type orderApplier interface {
	ApplyPaymentOutcome(ctx context.Context, orderID uuid.UUID, outcome orders.PaymentOutcome) error
}

type eventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type ServiceParams struct {
	Orders  orderApplier
	Guard   eventGuard
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
}

type Service struct {
	orders  orderApplier
	guard   eventGuard
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order applier required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	return &Service{
		orders:  params.Orders,
		guard:   params.Guard,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var succeeded bool
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		succeeded = true
	case stripe.EventTypePaymentIntentPaymentFailed:
		succeeded = false
	default:
		s.count(event, "ignored")
		return nil
	}

	processed, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook idempotency check")
	}
	if processed {
		s.count(event, "duplicate")
		return nil
	}

	if err := s.apply(ctx, event, succeeded); err != nil {
		// Release the mark so Stripe's retry can reprocess the delivery.
		if delErr := s.guard.Delete(ctx, event.ID); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "release webhook idempotency mark", delErr)
		}
		s.count(event, "error")
		return err
	}

	s.count(event, "applied")
	return nil
}

func (s *Service) apply(ctx context.Context, event *stripe.Event, succeeded bool) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}

	rawOrderID := pi.Metadata[metadataOrderID]
	if rawOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent carries no order id")
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in payment intent metadata")
	}

	outcome := orders.PaymentOutcome{
		Succeeded:       succeeded,
		PaymentIntentID: pi.ID,
		Raw:             json.RawMessage(event.Data.Raw),
		OccurredAt:      time.Unix(event.Created, 0),
	}
	if pi.LatestCharge != nil && pi.LatestCharge.Transfer != nil && pi.LatestCharge.Transfer.ID != "" {
		transferID := pi.LatestCharge.Transfer.ID
		outcome.TransferID = &transferID
	}

	err = s.orders.ApplyPaymentOutcome(ctx, orderID, outcome)
	// A replayed delivery that slipped past the guard lands here; the
	// recorded outcome already stands, so acknowledge it.
	if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		if s.logg != nil {
			s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "payment outcome already recorded")
		}
		return nil
	}
	return err
}

func (s *Service) count(event *stripe.Event, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncWebhookEvent(string(event.Type), result)
}
