package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
	"applygate/internal/gateway/paystack"
)

// PaymentService reconciles the two racing confirmation channels (gateway
// webhook and client-triggered verify) into exactly one pending_payment ->
// submitted transition per application. The repository's conditional update is
// the only synchronization primitive; no in-process locking is used.
type PaymentService struct {
	apps          application.Repository
	users         user.Repository
	opportunities opportunity.Repository
	gateway       Gateway
	logger        *slog.Logger
	now           func() time.Time
}

func NewPaymentService(apps application.Repository, users user.Repository, opportunities opportunity.Repository, gateway Gateway, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		apps:          apps,
		users:         users,
		opportunities: opportunities,
		gateway:       gateway,
		now:           time.Now,
		logger:        logger,
	}
}

type webhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chargeEventData struct {
	ID            int64                  `json:"id"`
	Reference     string                 `json:"reference"`
	AmountMinor   int64                  `json:"amount"`
	Authorization paystack.Authorization `json:"authorization"`
}

type transferEventData struct {
	TransferCode string `json:"transfer_code"`
	Status       string `json:"status"`
}

// ProcessWebhook handles an already signature-verified webhook payload. The
// HTTP layer has acknowledged receipt before this runs, so failures here are
// logged by the caller and dropped; there is no retry channel.
func (s *PaymentService) ProcessWebhook(ctx context.Context, payload []byte) error {
	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return common.NewValidationError("malformed webhook payload", nil)
	}

	switch event.Event {
	case "charge.success":
		var data chargeEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return common.NewValidationError("malformed charge event", nil)
		}
		_, err := s.confirm(ctx, data.Reference, fmt.Sprintf("%d", data.ID), data.AmountMinor, data.Authorization)
		return err
	case "transfer.success", "transfer.failed", "transfer.reversed":
		var data transferEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return common.NewValidationError("malformed transfer event", nil)
		}
		return s.handleTransferEvent(ctx, event.Event, data)
	default:
		s.logger.Debug("ignoring webhook event", "event", event.Event)
		return nil
	}
}

// VerifyAndConfirm is the synchronous pull channel, triggered when the payer's
// browser returns from the gateway. A "not paid yet" answer is a normal
// result, not an error.
func (s *PaymentService) VerifyAndConfirm(ctx context.Context, reference string) (*application.Application, bool, error) {
	applicationID, err := ParseReference(reference)
	if err != nil {
		return nil, false, err
	}
	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	if !result.Verified {
		app, err := s.apps.GetByID(ctx, applicationID)
		if err != nil {
			return nil, false, err
		}
		return app, false, nil
	}
	app, err := s.confirm(ctx, reference, result.TransactionID, result.AmountMinor, result.Authorization)
	if err != nil {
		return nil, false, err
	}
	return app, true, nil
}

// ChargeMobileMoney starts an STK-style charge for a pending application. The
// returned status is displayable ("pending approval"), not a final outcome;
// confirmation arrives through the webhook or a later verify call.
func (s *PaymentService) ChargeMobileMoney(ctx context.Context, userID, applicationID common.UUID, phone string) (*paystack.ChargeResult, error) {
	app, oppFee, applicant, err := s.chargeContext(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	reference := BuildReference(app.ID, s.now().UTC())
	return s.gateway.ChargeMobileMoney(ctx, reference, oppFee, phone, applicant.Email)
}

// ChargeSavedAuthorization charges the caller's stored payment-method token.
// The gateway answers synchronously, so a successful charge confirms the
// application through the same conditional-update path as the webhook.
func (s *PaymentService) ChargeSavedAuthorization(ctx context.Context, userID, applicationID common.UUID) (*application.Application, error) {
	app, oppFee, applicant, err := s.chargeContext(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if applicant.AuthorizationCode == "" {
		return nil, common.NewError(common.CodeConflict, "no saved payment authorization", nil)
	}
	reference := BuildReference(app.ID, s.now().UTC())
	result, err := s.gateway.ChargeAuthorization(ctx, applicant.Email, oppFee, applicant.AuthorizationCode, reference)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, reference, fmt.Sprintf("%d", result.ID), result.AmountMinor, result.Authorization)
}

func (s *PaymentService) chargeContext(ctx context.Context, userID, applicationID common.UUID) (*application.Application, float64, *user.User, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, 0, nil, err
	}
	if app.UserID != userID {
		return nil, 0, nil, common.NewError(common.CodeForbidden, "application belongs to another user", nil)
	}
	if app.Status != application.StatusPendingPayment {
		return nil, 0, nil, common.NewError(common.CodeConflict, "application fee is already paid", nil)
	}
	applicant, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, nil, err
	}
	fee, err := s.feeFor(ctx, app)
	if err != nil {
		return nil, 0, nil, err
	}
	return app, fee, applicant, nil
}

// confirm performs the single idempotent state transition. Duplicate and late
// events fall through the conditional update as no-ops.
func (s *PaymentService) confirm(ctx context.Context, reference, transactionID string, amountMinor int64, auth paystack.Authorization) (*application.Application, error) {
	applicationID, err := ParseReference(reference)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != application.StatusPendingPayment {
		// Duplicate or late replay; acknowledge and discard.
		return app, nil
	}

	amount := float64(amountMinor) / 100
	updated, err := s.apps.ConfirmPayment(ctx, applicationID, transactionID, amount)
	if err != nil {
		return nil, err
	}
	if updated {
		s.logger.Info("payment confirmed", "application_id", applicationID, "transaction_id", transactionID, "amount", amount)
		s.saveAuthorization(ctx, app.UserID, auth)
	}
	return s.apps.GetByID(ctx, applicationID)
}

// saveAuthorization persists a reusable payment-method token as a best-effort
// side effect. It must never block or fail the confirming transition.
func (s *PaymentService) saveAuthorization(ctx context.Context, userID common.UUID, auth paystack.Authorization) {
	if auth.AuthorizationCode == "" || !auth.Reusable {
		return
	}
	if err := s.users.SaveAuthorizationCode(ctx, userID, auth.AuthorizationCode); err != nil {
		s.logger.Warn("failed to store payment authorization", "user_id", userID, "error", err)
	}
}

func (s *PaymentService) handleTransferEvent(ctx context.Context, event string, data transferEventData) error {
	app, err := s.apps.FindByTransferCode(ctx, data.TransferCode)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			// Transfers not tied to an application produce codes we never
			// stored; ignore rather than err.
			s.logger.Debug("transfer event with unmatched code", "transfer_code", data.TransferCode)
			return nil
		}
		return err
	}

	switch event {
	case "transfer.success":
		s.logger.Info("transfer settled", "application_id", app.ID, "transfer_code", data.TransferCode)
		return nil
	default:
		// Failed or reversed: undo the optimistic refund stamp.
		if err := s.apps.ClearRefundResult(ctx, app.ID); err != nil {
			return err
		}
		if err := s.apps.ReleaseRefundClaim(ctx, app.ID); err != nil {
			return err
		}
		s.logger.Warn("transfer did not settle, refund stamp cleared", "application_id", app.ID, "event", event)
		return nil
	}
}

func (s *PaymentService) feeFor(ctx context.Context, app *application.Application) (float64, error) {
	opp, err := s.opportunities.GetByID(ctx, app.OpportunityID)
	if err != nil {
		return 0, err
	}
	if opp.FeeAmount <= 0 {
		return 0, common.NewError(common.CodeConflict, "opportunity has no application fee", nil)
	}
	return opp.FeeAmount, nil
}
