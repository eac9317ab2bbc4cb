package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/api/middleware"
	"github.com/kaoruharada/marketcore-backend/api/responses"
	"github.com/kaoruharada/marketcore-backend/api/validators"
	cartsvc "github.com/kaoruharada/marketcore-backend/internal/cart"
	"github.com/kaoruharada/marketcore-backend/pkg/currency"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
)

// CartAddSKU handles adding one SKU to the caller's cart.
func CartAddSKU(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload addSKURequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddSKU(r.Context(), claims.UserID, cartsvc.AddSKUInput{
			ProductID:  payload.ProductID,
			SKUID:      payload.SKUID,
			Quantity:   payload.Quantity,
			MediatorID: payload.MediatorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartDeleteSKU removes one SKU line from the caller's cart.
func CartDeleteSKU(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		skuID, err := uuid.Parse(chi.URLParam(r, "skuID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sku id"))
			return
		}
		productID, err := uuid.Parse(r.URL.Query().Get("product_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		record, err := svc.DeleteSKU(r.Context(), claims.UserID, productID, skuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartGet returns the caller's cart, empty when none exists yet.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		record, err := svc.GetCart(r.Context(), claims.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

type addSKURequest struct {
	ProductID  uuid.UUID  `json:"product_id" validate:"required"`
	SKUID      uuid.UUID  `json:"sku_id" validate:"required"`
	Quantity   int64      `json:"quantity" validate:"required,min=1"`
	MediatorID *uuid.UUID `json:"mediator_id,omitempty"`
}

type cartGroupResponse struct {
	GroupID         uuid.UUID        `json:"group_id"`
	ProviderID      uuid.UUID        `json:"provider_id"`
	ProductID       uuid.UUID        `json:"product_id"`
	Currency        string           `json:"currency"`
	SubtotalCents   int64            `json:"subtotal_cents"`
	TaxCents        int64            `json:"tax_cents"`
	TotalCents      int64            `json:"total_cents"`
	SubtotalDisplay string           `json:"subtotal_display"`
	TotalDisplay    string           `json:"total_display"`
	Lines           models.CartLines `json:"lines"`
}

type cartResponse struct {
	ID     uuid.UUID           `json:"id"`
	UserID uuid.UUID           `json:"user_id"`
	Groups []cartGroupResponse `json:"groups"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	resp := cartResponse{
		ID:     record.ID,
		UserID: record.UserID,
		Groups: make([]cartGroupResponse, len(record.Groups)),
	}
	for i, group := range record.Groups {
		resp.Groups[i] = cartGroupResponse{
			GroupID:         group.GroupID,
			ProviderID:      group.ProviderID,
			ProductID:       group.ProductID,
			Currency:        string(group.Currency),
			SubtotalCents:   group.SubtotalCents,
			TaxCents:        group.TaxCents,
			TotalCents:      group.TotalCents,
			SubtotalDisplay: currency.Display(group.Currency, group.SubtotalCents),
			TotalDisplay:    currency.Display(group.Currency, group.TotalCents),
			Lines:           group.Lines,
		}
	}
	return resp
}
