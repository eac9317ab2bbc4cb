package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/api/middleware"
	"github.com/kaoruharada/marketcore-backend/api/responses"
	"github.com/kaoruharada/marketcore-backend/api/validators"
	productsvc "github.com/kaoruharada/marketcore-backend/internal/products"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
)

// SKUSetAvailability toggles a SKU's availability for the operator's provider.
// A publication blocked by the stock gate answers 200 with allowed=false.
func SKUSetAvailability(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		skuID, err := uuid.Parse(chi.URLParam(r, "skuID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sku id"))
			return
		}

		var payload setAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Available == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "available is required"))
			return
		}

		result, err := svc.SetSKUAvailability(r.Context(), middleware.OperatorFromContext(r.Context()), productsvc.AvailabilityInput{
			SKUID:     skuID,
			Available: *payload.Available,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type setAvailabilityRequest struct {
	Available *bool `json:"available"`
}
