package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/api/middleware"
	cartsvc "github.com/kaoruharada/marketcore-backend/internal/cart"
	"github.com/kaoruharada/marketcore-backend/pkg/auth"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func customerContext(userID uuid.UUID) context.Context {
	return middleware.WithClaims(context.Background(), &auth.AccessTokenClaims{
		UserID: userID,
		Role:   enums.MemberRoleCustomer,
	})
}

func TestCartAddSKU(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()

	body := func() *bytes.Reader {
		payload, _ := json.Marshal(map[string]any{
			"product_id": uuid.NewString(),
			"sku_id":     uuid.NewString(),
			"quantity":   2,
		})
		return bytes.NewReader(payload)
	}

	t.Run("missing claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/items", body())
		rec := httptest.NewRecorder()
		CartAddSKU(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without claims, got %d", rec.Code)
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]any{
			"product_id": uuid.NewString(),
			"sku_id":     uuid.NewString(),
			"quantity":   0,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/items", bytes.NewReader(payload))
		req = req.WithContext(customerContext(userID))
		rec := httptest.NewRecorder()
		stub := &stubCartService{}
		CartAddSKU(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
		}
		if stub.addCalls != 0 {
			t.Fatalf("service should not be invoked on invalid payload")
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		payload, _ := json.Marshal(map[string]any{
			"product_id": uuid.NewString(),
			"sku_id":     uuid.NewString(),
			"quantity":   1,
			"surprise":   true,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/items", bytes.NewReader(payload))
		req = req.WithContext(customerContext(userID))
		rec := httptest.NewRecorder()
		CartAddSKU(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/items", body())
		req = req.WithContext(customerContext(userID))
		rec := httptest.NewRecorder()
		stub := &stubCartService{record: &models.CartRecord{ID: uuid.New(), UserID: userID}}
		CartAddSKU(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if stub.addCalls != 1 {
			t.Fatalf("expected AddSKU invoked once, got %d", stub.addCalls)
		}
		if stub.lastUserID != userID {
			t.Fatalf("expected claims user forwarded, got %s", stub.lastUserID)
		}
	})
}

func TestCartDeleteSKU(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	productID := uuid.New()
	skuID := uuid.New()

	makeRequest := func(sku, product string) *httptest.ResponseRecorder {
		target := fmt.Sprintf("/api/v1/carts/items/%s?product_id=%s", sku, product)
		req := httptest.NewRequest(http.MethodDelete, target, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("skuID", sku)
		ctx := context.WithValue(customerContext(userID), chi.RouteCtxKey, routeCtx)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CartDeleteSKU(&stubCartService{record: &models.CartRecord{UserID: userID}}, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid sku id", func(t *testing.T) {
		rec := makeRequest("not-a-uuid", productID.String())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid sku id, got %d", rec.Code)
		}
	})

	t.Run("missing product id", func(t *testing.T) {
		rec := makeRequest(skuID.String(), "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing product id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		rec := makeRequest(skuID.String(), productID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	})
}

func TestCartGetReturnsDisplayTotals(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()

	stub := &stubCartService{record: &models.CartRecord{
		ID:     uuid.New(),
		UserID: userID,
		Groups: []models.CartGroup{{
			GroupID:       uuid.New(),
			ProviderID:    uuid.New(),
			ProductID:     uuid.New(),
			Currency:      enums.CurrencyUSD,
			SubtotalCents: 123456,
			TaxCents:      12345,
			TotalCents:    135801,
		}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carts", nil)
	req = req.WithContext(customerContext(userID))
	rec := httptest.NewRecorder()
	CartGet(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Groups) != 1 {
		t.Fatalf("expected one group, got %d", len(envelope.Data.Groups))
	}
	if got := envelope.Data.Groups[0].TotalDisplay; got != "$135,801" {
		t.Fatalf("expected formatted total, got %q", got)
	}
}

type stubCartService struct {
	record     *models.CartRecord
	addCalls   int
	lastUserID uuid.UUID
	lastInput  cartsvc.AddSKUInput
}

func (s *stubCartService) AddSKU(ctx context.Context, userID uuid.UUID, input cartsvc.AddSKUInput) (*models.CartRecord, error) {
	s.addCalls++
	s.lastUserID = userID
	s.lastInput = input
	return s.record, nil
}

func (s *stubCartService) DeleteSKU(ctx context.Context, userID, productID, skuID uuid.UUID) (*models.CartRecord, error) {
	return s.record, nil
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	return s.record, nil
}
