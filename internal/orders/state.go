// Package orders governs the order lifecycle: payment confirmation, delivery
// progress, refund preconditions, and the dual-replica persistence that keeps
// the customer and provider copies of every order byte-equivalent.
package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	pkgerrors "github.com/kaoruharada/marketcore-backend/pkg/errors"
)

// PaymentOutcome captures the terminal result of a charge attempt.
type PaymentOutcome struct {
	Succeeded       bool
	PaymentIntentID string
	TransferID      *string
	Raw             json.RawMessage
	OccurredAt      time.Time
}

// ApplyPaymentOutcome moves payment_status from none to its terminal value.
// Payment status is set exactly once; every later attempt is a state
// conflict, never a silent overwrite.
func ApplyPaymentOutcome(order *models.Order, outcome PaymentOutcome) error {
	if order.PaymentStatus != enums.PaymentStatusNone {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment already %s", order.PaymentStatus))
	}
	if outcome.PaymentIntentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	order.PaymentIntentID = &outcome.PaymentIntentID
	order.TransferID = outcome.TransferID
	order.PaymentResult = outcome.Raw
	if outcome.Succeeded {
		order.PaymentStatus = enums.PaymentStatusSucceeded
		at := outcome.OccurredAt
		if at.IsZero() {
			at = time.Now()
		}
		order.PaidAt = &at
	} else {
		order.PaymentStatus = enums.PaymentStatusFailed
	}
	return nil
}

var deliveryTransitions = map[enums.DeliveryStatus][]enums.DeliveryStatus{
	enums.DeliveryStatusNone:       {enums.DeliveryStatusPending},
	enums.DeliveryStatusPending:    {enums.DeliveryStatusDelivering, enums.DeliveryStatusFailure},
	enums.DeliveryStatusDelivering: {enums.DeliveryStatusDelivered, enums.DeliveryStatusFailure},
}

// TransitionDelivery advances delivery_status along the allowed path.
// delivered and failure are terminal.
func TransitionDelivery(order *models.Order, next enums.DeliveryStatus) error {
	if !next.IsValid() || next == enums.DeliveryStatusNone {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid delivery status %q", next))
	}
	for _, allowed := range deliveryTransitions[order.DeliveryStatus] {
		if allowed == next {
			order.DeliveryStatus = next
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("delivery cannot move from %s to %s", order.DeliveryStatus, next))
}

// CanRefund checks the refund precondition: the order must have a succeeded
// payment, no prior refund, and must not be cancelled.
func CanRefund(order models.Order) error {
	if order.PaymentStatus != enums.PaymentStatusSucceeded {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order payment status is %s, refund requires succeeded", order.PaymentStatus))
	}
	if order.RefundStatus == enums.RefundStatusSucceeded {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already refunded")
	}
	if order.IsCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}
	return nil
}

// ApplyRefund writes the terminal refund state: every item canceled, refund
// succeeded, is_cancelled set. Re-applying the same terminal state is a
// no-op, which keeps transaction retries safe.
func ApplyRefund(order *models.Order, raw json.RawMessage) {
	for i := range order.Items {
		order.Items[i].Status = enums.OrderItemStatusCanceled
	}
	order.RefundStatus = enums.RefundStatusSucceeded
	order.IsCancelled = true
	if raw != nil {
		order.RefundResult = raw
	}
}
