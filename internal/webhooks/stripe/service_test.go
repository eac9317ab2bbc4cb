package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/kaoruharada/marketcore-backend/internal/orders"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
)

type stubApplier struct {
	applied []orders.PaymentOutcome
	orderID uuid.UUID
	err     error
}

func (s *stubApplier) ApplyPaymentOutcome(ctx context.Context, orderID uuid.UUID, outcome orders.PaymentOutcome) error {
	if s.err != nil {
		return s.err
	}
	s.orderID = orderID
	s.applied = append(s.applied, outcome)
	return nil
}

type memoryStore struct {
	keys map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]struct{}{}}
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("mc:idempotency:%s:%s", scope, id)
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.keys, key)
	}
	return nil
}

func paymentIntentEvent(t *testing.T, eventType stripe.EventType, orderID uuid.UUID) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       "pi_42",
		"object":   "payment_intent",
		"metadata": map[string]string{"order_id": orderID.String()},
	})
	if err != nil {
		t.Fatalf("marshal payment intent: %v", err)
	}
	return &stripe.Event{
		ID:      "evt_1",
		Type:    eventType,
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func newTestService(t *testing.T, applier *stubApplier) *Service {
	t.Helper()
	guard, err := NewIdempotencyGuard(newMemoryStore(), time.Hour, "stripe:webhook")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}
	svc, err := NewService(ServiceParams{Orders: applier, Guard: guard})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestHandleEventAppliesSucceededOutcome(t *testing.T) {
	orderID := uuid.New()
	applier := &stubApplier{}
	svc := newTestService(t, applier)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, orderID)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(applier.applied) != 1 {
		t.Fatalf("expected one applied outcome, got %d", len(applier.applied))
	}
	if applier.orderID != orderID {
		t.Fatalf("wrong order id: %s", applier.orderID)
	}
	outcome := applier.applied[0]
	if !outcome.Succeeded || outcome.PaymentIntentID != "pi_42" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestHandleEventDeduplicatesDeliveries(t *testing.T) {
	orderID := uuid.New()
	applier := &stubApplier{}
	svc := newTestService(t, applier)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, orderID)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if len(applier.applied) != 1 {
		t.Fatalf("expected single application across deliveries, got %d", len(applier.applied))
	}
	if applier.applied[0].Succeeded {
		t.Fatalf("payment_failed must apply a failed outcome")
	}
}

func TestHandleEventReleasesGuardOnFailure(t *testing.T) {
	orderID := uuid.New()
	applier := &stubApplier{err: pkgerrors.New(pkgerrors.CodeInternal, "db down")}
	svc := newTestService(t, applier)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, orderID)
	if err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Fatalf("expected handler error")
	}

	// The retry must get through the guard again.
	applier.err = nil
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if len(applier.applied) != 1 {
		t.Fatalf("expected application on retry, got %d", len(applier.applied))
	}
}

func TestHandleEventAcksReplayedTerminalState(t *testing.T) {
	orderID := uuid.New()
	applier := &stubApplier{err: pkgerrors.New(pkgerrors.CodeStateConflict, "payment already succeeded")}
	svc := newTestService(t, applier)

	event := paymentIntentEvent(t, stripe.EventTypePaymentIntentSucceeded, orderID)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("replayed terminal state must be acknowledged, got %v", err)
	}
}

func TestHandleEventIgnoresUnrelatedTypes(t *testing.T) {
	applier := &stubApplier{}
	svc := newTestService(t, applier)

	event := paymentIntentEvent(t, stripe.EventType("customer.created"), uuid.New())
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(applier.applied) != 0 {
		t.Fatalf("unrelated events must not apply outcomes")
	}
}

func TestHandleEventRejectsMissingOrderID(t *testing.T) {
	applier := &stubApplier{}
	svc := newTestService(t, applier)

	raw, _ := json.Marshal(map[string]any{"id": "pi_99", "object": "payment_intent"})
	event := &stripe.Event{
		ID:   "evt_2",
		Type: stripe.EventTypePaymentIntentSucceeded,
		Data: &stripe.EventData{Raw: raw},
	}
	err := svc.HandleEvent(context.Background(), event)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
