package app

import (
	"context"
	"log/slog"
	"time"

	"applygate/internal/domain/application"
	"applygate/internal/domain/message"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
)

// ReminderService sweeps applications stuck in pending_payment and nudges the
// applicant, at most maxPerApplication times, recording each confirmed send in
// the message ledger. A failed send never consumes a reminder slot.
type ReminderService struct {
	apps              application.Repository
	messages          message.Repository
	opportunities     opportunity.Repository
	users             user.Repository
	notifier          Notifier
	logger            *slog.Logger
	staleness         time.Duration
	maxPerApplication int
	now               func() time.Time
}

func NewReminderService(apps application.Repository, messages message.Repository, opportunities opportunity.Repository, users user.Repository, notifier Notifier, logger *slog.Logger, staleness time.Duration, maxPerApplication int) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{
		apps:              apps,
		messages:          messages,
		opportunities:     opportunities,
		users:             users,
		notifier:          notifier,
		logger:            logger,
		staleness:         staleness,
		maxPerApplication: maxPerApplication,
		now:               time.Now,
	}
}

func (s *ReminderService) Sweep(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.staleness)
	stale, err := s.apps.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, app := range stale {
		if err := s.remind(ctx, app); err != nil {
			s.logger.Warn("reminder skipped", "application_id", app.ID, "error", err)
		}
	}
	return nil
}

func (s *ReminderService) remind(ctx context.Context, app application.Application) error {
	count, err := s.messages.CountByApplicationAndType(ctx, app.ID, message.TypePaymentReminder)
	if err != nil {
		return err
	}
	if count >= s.maxPerApplication {
		return nil
	}

	applicant, err := s.users.GetByID(ctx, app.UserID)
	if err != nil {
		return err
	}
	opp, err := s.opportunities.GetByID(ctx, app.OpportunityID)
	if err != nil {
		return err
	}

	// Send first, record only on success: the ledger entry is what enforces
	// the cap, so a failed send must not occupy a slot.
	if err := s.notifier.SendPaymentReminder(ctx, *applicant, *opp, app); err != nil {
		return err
	}

	_, err = s.messages.Create(ctx, message.Message{
		UserID:        app.UserID,
		ApplicationID: app.ID,
		OpportunityID: app.OpportunityID,
		Type:          message.TypePaymentReminder,
		Subject:       "Complete your application payment",
		Content:       "Your application for " + opp.Title + " is awaiting the application fee.",
		EmailSent:     true,
		SentAt:        s.now().UTC(),
	})
	if err != nil {
		return err
	}
	s.logger.Info("payment reminder sent", "application_id", app.ID, "reminder_number", count+1)
	return nil
}
