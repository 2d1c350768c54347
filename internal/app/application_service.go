package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
	"applygate/internal/gateway/paystack"
)

type ApplicationService struct {
	apps          application.Repository
	opportunities opportunity.Repository
	users         user.Repository
	gateway       Gateway
	logger        *slog.Logger
	now           func() time.Time
}

func NewApplicationService(apps application.Repository, opportunities opportunity.Repository, users user.Repository, gateway Gateway, logger *slog.Logger) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{
		apps:          apps,
		opportunities: opportunities,
		users:         users,
		gateway:       gateway,
		logger:        logger,
		now:           time.Now,
	}
}

type ApplyResult struct {
	Application *application.Application `json:"application"`
	PaymentLink string                   `json:"payment_link,omitempty"`
	Reference   string                   `json:"reference,omitempty"`
}

func (s *ApplicationService) Apply(ctx context.Context, userID, opportunityID common.UUID) (*ApplyResult, error) {
	applicant, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !opp.Open(s.now().UTC()) {
		return nil, common.NewError(common.CodeValidation, "opportunity is closed", nil)
	}
	if _, err := s.apps.FindByUserAndOpportunity(ctx, userID, opportunityID); err == nil {
		return nil, common.NewError(common.CodeConflict, "already applied", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	created, err := s.apps.Create(ctx, application.Application{
		UserID:        userID,
		OpportunityID: opportunityID,
		Status:        application.StatusPendingPayment,
	})
	if err != nil {
		return nil, err
	}

	if opp.FeeAmount <= 0 {
		if _, err := s.apps.ConfirmPayment(ctx, created.ID, "", 0); err != nil {
			return nil, err
		}
		confirmed, err := s.apps.GetByID(ctx, created.ID)
		if err != nil {
			return nil, err
		}
		return &ApplyResult{Application: confirmed}, nil
	}

	reference := BuildReference(created.ID, s.now().UTC())
	init, err := s.gateway.InitializePayment(ctx, reference, opp.FeeAmount, paystack.Customer{
		Email: applicant.Email,
		Name:  applicant.Name,
	})
	if err != nil {
		// Roll the pending record back so the applicant can retry; the
		// uniqueness constraint would otherwise block a second attempt.
		if delErr := s.apps.Delete(ctx, created.ID); delErr != nil {
			s.logger.Warn("failed to roll back application after gateway error", "application_id", created.ID, "error", delErr)
		}
		return nil, err
	}

	return &ApplyResult{
		Application: created,
		PaymentLink: init.AuthorizationURL,
		Reference:   init.Reference,
	}, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, userID, applicationID common.UUID) error {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.UserID != userID {
		return common.NewError(common.CodeForbidden, "application belongs to another user", nil)
	}
	if !app.Withdrawable() {
		return common.NewError(common.CodeConflict, "application can no longer be withdrawn", nil)
	}
	return s.apps.Delete(ctx, applicationID)
}

// AdminSetStatus is an administrative overwrite with no transition ordering
// guard; the status value itself is still validated.
func (s *ApplicationService) AdminSetStatus(ctx context.Context, applicationID common.UUID, status application.Status) (*application.Application, error) {
	normalized := application.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !application.IsKnownStatus(normalized) || normalized == application.StatusPendingPayment {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be submitted, under_review, shortlisted, rejected, or accepted"})
	}
	if _, err := s.apps.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.apps.UpdateStatus(ctx, applicationID, normalized)
}

func (s *ApplicationService) ListByUser(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	return s.apps.ListByUser(ctx, userID)
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.apps.GetByID(ctx, id)
}
