package application

import (
	"time"

	"applygate/internal/common"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusSubmitted      Status = "submitted"
	StatusUnderReview    Status = "under_review"
	StatusShortlisted    Status = "shortlisted"
	StatusRejected       Status = "rejected"
	StatusAccepted       Status = "accepted"
)

type Application struct {
	ID                 common.UUID `json:"id"`
	UserID             common.UUID `json:"user_id"`
	OpportunityID      common.UUID `json:"opportunity_id"`
	Status             Status      `json:"status"`
	TransactionID      string      `json:"transaction_id,omitempty"`
	AmountPaid         *float64    `json:"amount_paid,omitempty"`
	RefundedAt         *time.Time  `json:"refunded_at,omitempty"`
	RefundAmount       *float64    `json:"refund_amount,omitempty"`
	RefundTransferCode string      `json:"refund_transfer_code,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// PaymentConfirmed reports whether the application fee has been collected.
// Any status past pending_payment implies a confirmed payment.
func (a Application) PaymentConfirmed() bool {
	return a.Status != StatusPendingPayment
}

func (a Application) Withdrawable() bool {
	return a.Status == StatusPendingPayment || a.Status == StatusSubmitted
}

func IsKnownStatus(status Status) bool {
	switch status {
	case StatusPendingPayment, StatusSubmitted, StatusUnderReview, StatusShortlisted, StatusRejected, StatusAccepted:
		return true
	default:
		return false
	}
}
