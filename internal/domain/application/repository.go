package application

import (
	"context"
	"time"

	"applygate/internal/common"
)

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByUserAndOpportunity(ctx context.Context, userID, opportunityID common.UUID) (*Application, error)
	FindByTransferCode(ctx context.Context, transferCode string) (*Application, error)
	ListByUser(ctx context.Context, userID common.UUID) ([]Application, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Application, error)

	// ConfirmPayment performs the single conditional write that moves an
	// application from pending_payment to submitted. It returns false when the
	// row was no longer in pending_payment, which callers treat as a duplicate
	// confirmation rather than an error.
	ConfirmPayment(ctx context.Context, id common.UUID, transactionID string, amount float64) (bool, error)

	// ClaimRefund stamps refunded_at iff the payment is confirmed and no refund
	// has been claimed yet. Returns false when the claim was lost.
	ClaimRefund(ctx context.Context, id common.UUID, at time.Time) (bool, error)
	ReleaseRefundClaim(ctx context.Context, id common.UUID) error
	SetRefundResult(ctx context.Context, id common.UUID, amount float64, transferCode string) error
	ClearRefundResult(ctx context.Context, id common.UUID) error

	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Application, error)
	Delete(ctx context.Context, id common.UUID) error
}
