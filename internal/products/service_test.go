package products

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
)

type stubProductsRepo struct {
	sku     *models.SKU
	updated []bool
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductsRepo) FindSKU(ctx context.Context, skuID uuid.UUID) (*models.SKU, error) {
	return s.sku, nil
}

func (s *stubProductsRepo) FindSKUWithProduct(ctx context.Context, skuID uuid.UUID) (*models.SKU, *models.Product, error) {
	panic("not implemented")
}

func (s *stubProductsRepo) FindStocks(ctx context.Context, skuID uuid.UUID) ([]models.Stock, error) {
	if s.sku == nil {
		return nil, nil
	}
	return s.sku.Stocks, nil
}

func (s *stubProductsRepo) UpdateSKUAvailability(ctx context.Context, skuID uuid.UUID, available bool) error {
	s.updated = append(s.updated, available)
	return nil
}

func (s *stubProductsRepo) AddStock(ctx context.Context, stock *models.Stock) error {
	s.sku.Stocks = append(s.sku.Stocks, *stock)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func operatorFor(providerID uuid.UUID) *auth.OperatorClaims {
	return &auth.OperatorClaims{
		UserID:     uuid.New(),
		ProviderID: providerID,
		Role:       enums.MemberRoleOperator,
	}
}

func finiteSKU(providerID uuid.UUID, stocks ...models.Stock) *models.SKU {
	return &models.SKU{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		ProviderID:    providerID,
		InventoryType: enums.InventoryTypeFinite,
		Stocks:        stocks,
	}
}

func TestSetSKUAvailabilityBlockedWithoutStock(t *testing.T) {
	providerID := uuid.New()
	repo := &stubProductsRepo{sku: finiteSKU(providerID)}
	publisher := &recordingOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.SetSKUAvailability(context.Background(), operatorFor(providerID), AvailabilityInput{
		SKUID:     repo.sku.ID,
		Available: true,
	})
	if err != nil {
		t.Fatalf("a blocked publication is advisory, got error %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected publication blocked, got %+v", result)
	}
	if result.Reason != ReasonNoStock {
		t.Fatalf("expected reason %q, got %q", ReasonNoStock, result.Reason)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("blocked flip must not persist availability")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("blocked flip must not emit events")
	}
}

func TestSetSKUAvailabilityPublishesWithStock(t *testing.T) {
	providerID := uuid.New()
	repo := &stubProductsRepo{sku: finiteSKU(providerID, models.Stock{Count: 1})}
	publisher := &recordingOutbox{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	result, err := svc.SetSKUAvailability(context.Background(), operatorFor(providerID), AvailabilityInput{
		SKUID:     repo.sku.ID,
		Available: true,
	})
	if err != nil {
		t.Fatalf("SetSKUAvailability: %v", err)
	}
	if !result.Allowed || !result.SKU.IsAvailable {
		t.Fatalf("expected publication allowed, got %+v", result)
	}
	if len(repo.updated) != 1 || !repo.updated[0] {
		t.Fatalf("expected availability persisted as true")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventSKUPublished {
		t.Fatalf("expected sku_published event, got %+v", publisher.events)
	}
}

func TestSetSKUAvailabilityUnpublishIsUngated(t *testing.T) {
	providerID := uuid.New()
	sku := finiteSKU(providerID)
	sku.IsAvailable = true
	repo := &stubProductsRepo{sku: sku}
	publisher := &recordingOutbox{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	result, err := svc.SetSKUAvailability(context.Background(), operatorFor(providerID), AvailabilityInput{
		SKUID:     sku.ID,
		Available: false,
	})
	if err != nil {
		t.Fatalf("SetSKUAvailability: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("taking a sku off sale must never be blocked")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventSKUUnpublished {
		t.Fatalf("expected sku_unpublished event, got %+v", publisher.events)
	}
}

func TestSetSKUAvailabilityCrossProviderForbidden(t *testing.T) {
	repo := &stubProductsRepo{sku: finiteSKU(uuid.New(), models.Stock{Count: 5})}
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	_, err := svc.SetSKUAvailability(context.Background(), operatorFor(uuid.New()), AvailabilityInput{
		SKUID:     repo.sku.ID,
		Available: true,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestSetSKUAvailabilityRequiresClaims(t *testing.T) {
	repo := &stubProductsRepo{sku: finiteSKU(uuid.New())}
	svc, _ := NewService(repo, stubTxRunner{}, &recordingOutbox{})

	_, err := svc.SetSKUAvailability(context.Background(), nil, AvailabilityInput{SKUID: repo.sku.ID, Available: true})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}
