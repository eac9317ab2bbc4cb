package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/api/middleware"
	"github.com/kaoruharada/marketcore-backend/api/responses"
	"github.com/kaoruharada/marketcore-backend/api/validators"
	ordersvc "github.com/kaoruharada/marketcore-backend/internal/orders"
	refundsvc "github.com/kaoruharada/marketcore-backend/internal/refunds"
	"github.com/kaoruharada/marketcore-backend/pkg/currency"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
	"github.com/kaoruharada/marketcore-backend/pkg/logger"
	"github.com/kaoruharada/marketcore-backend/pkg/pagination"
	"github.com/kaoruharada/marketcore-backend/pkg/types"
)

// OrderGet returns the caller's replica of an order.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), claims.UserID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// ProviderOrderGet returns the provider replica of an order to its operator.
func ProviderOrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetProviderOrder(r.Context(), middleware.OperatorFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// ProviderOrdersList returns one keyset page of the provider's orders.
func ProviderOrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		page, err := svc.ListProviderOrders(r.Context(), middleware.OperatorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders := make([]orderResponse, len(page.Orders))
		for i := range page.Orders {
			orders[i] = newOrderResponse(&page.Orders[i])
		}
		responses.WriteSuccess(w, orderPageResponse{Orders: orders, NextCursor: page.NextCursor})
	}
}

// ProviderOrderFulfillment advances the delivery status of an order.
func ProviderOrderFulfillment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseDeliveryStatus(payload.DeliveryStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery status"))
			return
		}

		order, err := svc.SetDeliveryStatus(r.Context(), middleware.OperatorFromContext(r.Context()), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// ProviderOrderRefund runs the refund coordinator for an order.
func ProviderOrderRefund(coord refundsvc.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coord == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund coordinator unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := coord.Refund(r.Context(), middleware.OperatorFromContext(r.Context()), refundsvc.RefundInput{
			OrderID: orderID,
			Reason:  payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type fulfillmentRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"required"`
}

type refundRequest struct {
	Reason string `json:"reason"`
}

type orderPageResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type orderResponse struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	ProviderID        uuid.UUID         `json:"provider_id"`
	Title             *string           `json:"title,omitempty"`
	Currency          string            `json:"currency"`
	AmountCents       int64             `json:"amount_cents"`
	AmountDisplay     string            `json:"amount_display"`
	Shipping          *types.Shipping   `json:"shipping,omitempty"`
	ShippingFormatted string            `json:"shipping_formatted,omitempty"`
	Items             models.OrderItems `json:"items"`
	DeliveryStatus    string            `json:"delivery_status"`
	PaymentStatus     string            `json:"payment_status"`
	RefundStatus      string            `json:"refund_status"`
	IsCancelled       bool              `json:"is_cancelled"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		ProviderID:     order.ProviderID,
		Title:          order.Title,
		Currency:       string(order.Currency),
		AmountCents:    order.AmountCents,
		AmountDisplay:  currency.Display(order.Currency, order.AmountCents),
		Shipping:       order.Shipping,
		Items:          order.Items,
		DeliveryStatus: string(order.DeliveryStatus),
		PaymentStatus:  string(order.PaymentStatus),
		RefundStatus:   string(order.RefundStatus),
		IsCancelled:    order.IsCancelled,
		PaidAt:         order.PaidAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.Shipping != nil && order.Shipping.Address != nil {
		resp.ShippingFormatted = order.Shipping.Formatted(order.Shipping.Address.Country)
	}
	return resp
}
