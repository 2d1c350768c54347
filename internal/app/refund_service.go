package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/user"
	"applygate/internal/gateway/paystack"
)

// RefundService drives admin-triggered refunds and payouts. Refund claims use
// the same conditional-update discipline as payment confirmation so that two
// concurrent admin actions can never both refund the same application.
type RefundService struct {
	apps    application.Repository
	users   user.Repository
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time
}

func NewRefundService(apps application.Repository, users user.Repository, gateway Gateway, logger *slog.Logger) *RefundService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefundService{
		apps:    apps,
		users:   users,
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RefundService) Refund(ctx context.Context, applicationID common.UUID, reason string) (*application.Application, error) {
	claimed, err := s.apps.ClaimRefund(ctx, applicationID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, common.NewError(common.CodeConflict, "application is unpaid or already refunded", nil)
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		s.rollbackClaim(ctx, applicationID)
		return nil, err
	}
	if app.TransactionID == "" || app.AmountPaid == nil {
		s.rollbackClaim(ctx, applicationID)
		return nil, common.NewError(common.CodeConflict, "no payment to refund", nil)
	}

	if _, err := s.gateway.Refund(ctx, app.TransactionID, *app.AmountPaid, reason); err != nil {
		s.rollbackClaim(ctx, applicationID)
		return nil, err
	}
	if err := s.apps.SetRefundResult(ctx, applicationID, *app.AmountPaid, ""); err != nil {
		return nil, err
	}
	s.logger.Info("refund issued", "application_id", applicationID, "amount", *app.AmountPaid)
	return s.apps.GetByID(ctx, applicationID)
}

type TransferRequest struct {
	Amount        float64
	Phone         string
	Reason        string
	ApplicationID *common.UUID
}

// Transfer pays out to a mobile-money recipient. When tied to an application
// the refund fields are stamped optimistically; the incoming transfer-status
// event corroborates or clears them later.
func (s *RefundService) Transfer(ctx context.Context, req TransferRequest) (*paystack.TransferResult, error) {
	if req.Amount <= 0 {
		return nil, common.NewValidationError("invalid transfer amount", map[string]string{"amount": "amount must be greater than zero"})
	}

	recipientName := "Payout recipient"
	if req.ApplicationID != nil {
		app, err := s.apps.GetByID(ctx, *req.ApplicationID)
		if err != nil {
			return nil, err
		}
		owner, err := s.users.GetByID(ctx, app.UserID)
		if err != nil {
			return nil, err
		}
		if owner.Name != "" {
			recipientName = owner.Name
		}
	}

	recipientCode, err := s.gateway.CreateRecipient(ctx, recipientName, req.Phone)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("TRF-%s-%d", common.NewUUID(), s.now().UTC().UnixMilli())
	result, err := s.gateway.InitiateTransfer(ctx, req.Amount, recipientCode, req.Reason, reference)
	if err != nil {
		return nil, err
	}

	if req.ApplicationID != nil {
		claimed, err := s.apps.ClaimRefund(ctx, *req.ApplicationID, s.now().UTC())
		if err != nil {
			return nil, err
		}
		if !claimed {
			s.logger.Warn("transfer sent but refund stamp not claimed", "application_id", *req.ApplicationID, "transfer_code", result.TransferCode)
			return result, nil
		}
		if err := s.apps.SetRefundResult(ctx, *req.ApplicationID, req.Amount, result.TransferCode); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *RefundService) rollbackClaim(ctx context.Context, applicationID common.UUID) {
	if err := s.apps.ReleaseRefundClaim(ctx, applicationID); err != nil {
		s.logger.Error("failed to release refund claim", "application_id", applicationID, "error", err)
	}
}
