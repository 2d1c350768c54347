package app

import (
	"context"

	"applygate/internal/domain/application"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
	"applygate/internal/gateway/paystack"
)

// Gateway is the slice of the payment gateway the services consume. The
// concrete implementation lives in internal/gateway/paystack.
type Gateway interface {
	InitializePayment(ctx context.Context, reference string, amount float64, customer paystack.Customer) (*paystack.InitializeResult, error)
	ChargeMobileMoney(ctx context.Context, reference string, amount float64, phone, email string) (*paystack.ChargeResult, error)
	ChargeAuthorization(ctx context.Context, email string, amount float64, authorizationCode, reference string) (*paystack.ChargeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	Refund(ctx context.Context, transactionID string, amount float64, reason string) (*paystack.RefundResult, error)
	CreateRecipient(ctx context.Context, name, phone string) (string, error)
	InitiateTransfer(ctx context.Context, amount float64, recipientCode, reason, reference string) (*paystack.TransferResult, error)
}

// Notifier delivers outbound notifications. Rendering and delivery are owned
// by the notification service; callers only learn whether the send succeeded.
type Notifier interface {
	SendPaymentReminder(ctx context.Context, to user.User, opp opportunity.Opportunity, app application.Application) error
}
