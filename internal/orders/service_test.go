package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaoruharada/marketcore-backend/pkg/auth"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/outbox"
	"github.com/kaoruharada/marketcore-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	replicas map[enums.OrderScope]*models.Order
	saved    []models.Order
}

func newStubOrdersRepo(order models.Order) *stubOrdersRepo {
	customer := order.CloneForScope(enums.OrderScopeCustomer)
	provider := order.CloneForScope(enums.OrderScopeProvider)
	return &stubOrdersRepo{
		replicas: map[enums.OrderScope]*models.Order{
			enums.OrderScopeCustomer: &customer,
			enums.OrderScopeProvider: &provider,
		},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) FindReplica(ctx context.Context, orderID uuid.UUID, scope enums.OrderScope) (*models.Order, error) {
	order := s.replicas[scope]
	if order == nil || order.ID != orderID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindReplicaByPaymentIntent(ctx context.Context, paymentIntentID string, scope enums.OrderScope) (*models.Order, error) {
	order := s.replicas[scope]
	if order == nil || order.PaymentIntentID == nil || *order.PaymentIntentID != paymentIntentID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	order := s.replicas[enums.OrderScopeProvider]
	if order == nil || order.ProviderID != providerID {
		return nil, nil
	}
	return []models.Order{*order}, nil
}

func (s *stubOrdersRepo) CreateBoth(ctx context.Context, order models.Order) error {
	return s.SaveBoth(ctx, order)
}

func (s *stubOrdersRepo) SaveBoth(ctx context.Context, order models.Order) error {
	s.saved = append(s.saved, order)
	customer := order.CloneForScope(enums.OrderScopeCustomer)
	provider := order.CloneForScope(enums.OrderScopeProvider)
	s.replicas[enums.OrderScopeCustomer] = &customer
	s.replicas[enums.OrderScopeProvider] = &provider
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func paidOrder() models.Order {
	pi := "pi_123"
	return models.Order{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		ProviderID:      uuid.New(),
		Currency:        enums.CurrencyUSD,
		AmountCents:     5400,
		PaymentStatus:   enums.PaymentStatusSucceeded,
		PaymentIntentID: &pi,
	}
}

func operatorFor(providerID uuid.UUID) *auth.OperatorClaims {
	return &auth.OperatorClaims{UserID: uuid.New(), ProviderID: providerID, Role: enums.MemberRoleOperator}
}

func TestGetOrderHidesForeignOrders(t *testing.T) {
	order := paidOrder()
	repo := newStubOrdersRepo(order)
	svc, err := NewService(repo, stubTxRunner{}, &recordingOutbox{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.GetOrder(context.Background(), order.UserID, order.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for foreign user, got %v", err)
	}
}

func TestGetProviderOrderCrossProviderForbidden(t *testing.T) {
	order := paidOrder()
	repo := newStubOrdersRepo(order)
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	_, err := svc.GetProviderOrder(context.Background(), operatorFor(uuid.New()), order.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestApplyPaymentOutcomeWritesBothReplicas(t *testing.T) {
	order := models.Order{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ProviderID: uuid.New(),
		Currency:   enums.CurrencyJPY,
	}
	repo := newStubOrdersRepo(order)
	publisher := &recordingOutbox{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	err := svc.ApplyPaymentOutcome(context.Background(), order.ID, PaymentOutcome{
		Succeeded:       true,
		PaymentIntentID: "pi_900",
	})
	if err != nil {
		t.Fatalf("ApplyPaymentOutcome: %v", err)
	}

	customer := repo.replicas[enums.OrderScopeCustomer]
	provider := repo.replicas[enums.OrderScopeProvider]
	if customer.PaymentStatus != enums.PaymentStatusSucceeded || provider.PaymentStatus != enums.PaymentStatusSucceeded {
		t.Fatalf("both replicas must carry the payment outcome")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOrderPaid {
		t.Fatalf("expected order_paid event, got %+v", publisher.events)
	}
}

func TestApplyPaymentOutcomeTwiceConflicts(t *testing.T) {
	order := paidOrder()
	repo := newStubOrdersRepo(order)
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	err := svc.ApplyPaymentOutcome(context.Background(), order.ID, PaymentOutcome{
		Succeeded:       true,
		PaymentIntentID: "pi_123",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestSetDeliveryStatusEmitsDelivered(t *testing.T) {
	order := paidOrder()
	order.DeliveryStatus = enums.DeliveryStatusDelivering
	repo := newStubOrdersRepo(order)
	publisher := &recordingOutbox{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	updated, err := svc.SetDeliveryStatus(context.Background(), operatorFor(order.ProviderID), order.ID, enums.DeliveryStatusDelivered)
	if err != nil {
		t.Fatalf("SetDeliveryStatus: %v", err)
	}
	if updated.DeliveryStatus != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.DeliveryStatus)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOrderDelivered {
		t.Fatalf("expected order_delivered event, got %+v", publisher.events)
	}
	if repo.replicas[enums.OrderScopeCustomer].DeliveryStatus != enums.DeliveryStatusDelivered {
		t.Fatalf("customer replica must mirror the transition")
	}
}

func TestSetDeliveryStatusIllegalTransition(t *testing.T) {
	order := paidOrder()
	repo := newStubOrdersRepo(order)
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	_, err := svc.SetDeliveryStatus(context.Background(), operatorFor(order.ProviderID), order.ID, enums.DeliveryStatusDelivered)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("illegal transition must not persist")
	}
}

type listStubRepo struct {
	stubOrdersRepo
	rows      []models.Order
	gotLimit  int
	gotCursor *pagination.Cursor
}

func (s *listStubRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	s.gotLimit = limit
	s.gotCursor = cursor
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func TestListProviderOrdersPaginates(t *testing.T) {
	providerID := uuid.New()
	rows := make([]models.Order, 3)
	for i := range rows {
		order := paidOrder()
		order.ProviderID = providerID
		rows[i] = order.CloneForScope(enums.OrderScopeProvider)
	}
	repo := &listStubRepo{rows: rows}
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	page, err := svc.ListProviderOrders(context.Background(), operatorFor(providerID), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListProviderOrders: %v", err)
	}
	if repo.gotLimit != 3 {
		t.Fatalf("expected buffered limit 3, got %d", repo.gotLimit)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Orders))
	}
	if page.NextCursor == "" {
		t.Fatalf("expected next cursor for a full page")
	}

	cursor, err := pagination.Parse(page.NextCursor)
	if err != nil {
		t.Fatalf("parse next cursor: %v", err)
	}
	if cursor.ID != page.Orders[1].ID {
		t.Fatalf("cursor must pin the last returned row")
	}
}

func TestListProviderOrdersLastPageHasNoCursor(t *testing.T) {
	providerID := uuid.New()
	order := paidOrder()
	order.ProviderID = providerID
	repo := &listStubRepo{rows: []models.Order{order.CloneForScope(enums.OrderScopeProvider)}}
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	page, err := svc.ListProviderOrders(context.Background(), operatorFor(providerID), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListProviderOrders: %v", err)
	}
	if len(page.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(page.Orders))
	}
	if page.NextCursor != "" {
		t.Fatalf("expected empty cursor on last page, got %q", page.NextCursor)
	}
}

func TestListProviderOrdersRejectsBadCursor(t *testing.T) {
	repo := &listStubRepo{}
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	_, err := svc.ListProviderOrders(context.Background(), operatorFor(uuid.New()), pagination.Params{Cursor: "garbage"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION for bad cursor, got %v", err)
	}

	if _, err := svc.ListProviderOrders(context.Background(), nil, pagination.Params{}); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED without claims, got %v", err)
	}
}
