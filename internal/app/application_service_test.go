package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
)

func TestApplicationServiceApply_CreatesPendingWithPaymentLink(t *testing.T) {
	apps := newFakeApplicationRepo()
	opps := newFakeOpportunityRepo()
	users := newFakeUserRepo()
	gateway := &fakeGateway{}
	service := NewApplicationService(apps, opps, users, gateway, nil)

	applicant := users.put(user.User{Email: "jane@example.com", Name: "Jane"})
	opp := opps.put(opportunity.Opportunity{Title: "Scholarship", FeeAmount: 150, Active: true, Deadline: time.Now().Add(24 * time.Hour)})

	result, err := service.Apply(context.Background(), applicant.ID, opp.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Application.Status != application.StatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", result.Application.Status)
	}
	if result.PaymentLink == "" {
		t.Fatal("expected a payment link")
	}
	if !strings.HasPrefix(result.Reference, "APP-"+result.Application.ID.String()+"-") {
		t.Fatalf("expected reference to encode the application id, got %q", result.Reference)
	}
}

func TestApplicationServiceApply_DuplicateConflict(t *testing.T) {
	apps := newFakeApplicationRepo()
	opps := newFakeOpportunityRepo()
	users := newFakeUserRepo()
	service := NewApplicationService(apps, opps, users, &fakeGateway{}, nil)

	applicant := users.put(user.User{Email: "jane@example.com"})
	opp := opps.put(opportunity.Opportunity{FeeAmount: 150, Active: true, Deadline: time.Now().Add(24 * time.Hour)})

	if _, err := service.Apply(context.Background(), applicant.ID, opp.ID); err != nil {
		t.Fatalf("expected first apply to succeed, got %v", err)
	}
	_, err := service.Apply(context.Background(), applicant.ID, opp.ID)
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestApplicationServiceApply_ClosedOpportunity(t *testing.T) {
	apps := newFakeApplicationRepo()
	opps := newFakeOpportunityRepo()
	users := newFakeUserRepo()
	service := NewApplicationService(apps, opps, users, &fakeGateway{}, nil)

	applicant := users.put(user.User{Email: "jane@example.com"})
	closed := opps.put(opportunity.Opportunity{FeeAmount: 150, Active: true, Deadline: time.Now().Add(-time.Hour)})
	inactive := opps.put(opportunity.Opportunity{FeeAmount: 150, Active: false, Deadline: time.Now().Add(24 * time.Hour)})

	if _, err := service.Apply(context.Background(), applicant.ID, closed.ID); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for past deadline, got %v", err)
	}
	if _, err := service.Apply(context.Background(), applicant.ID, inactive.ID); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for inactive opportunity, got %v", err)
	}
}

func TestApplicationServiceApply_GatewayFailureRollsBack(t *testing.T) {
	apps := newFakeApplicationRepo()
	opps := newFakeOpportunityRepo()
	users := newFakeUserRepo()
	gateway := &fakeGateway{initErr: common.NewError(common.CodeGateway, "gateway unreachable", nil)}
	service := NewApplicationService(apps, opps, users, gateway, nil)

	applicant := users.put(user.User{Email: "jane@example.com"})
	opp := opps.put(opportunity.Opportunity{FeeAmount: 150, Active: true, Deadline: time.Now().Add(24 * time.Hour)})

	if _, err := service.Apply(context.Background(), applicant.ID, opp.ID); !common.Is(err, common.CodeGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	// The pending record must be gone so a retry is not blocked by the
	// uniqueness constraint.
	if _, err := apps.FindByUserAndOpportunity(context.Background(), applicant.ID, opp.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected application to be rolled back, got %v", err)
	}

	gateway.initErr = nil
	if _, err := service.Apply(context.Background(), applicant.ID, opp.ID); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestApplicationServiceApply_ZeroFeeSubmitsImmediately(t *testing.T) {
	apps := newFakeApplicationRepo()
	opps := newFakeOpportunityRepo()
	users := newFakeUserRepo()
	gateway := &fakeGateway{}
	service := NewApplicationService(apps, opps, users, gateway, nil)

	applicant := users.put(user.User{Email: "jane@example.com"})
	opp := opps.put(opportunity.Opportunity{FeeAmount: 0, Active: true, Deadline: time.Now().Add(24 * time.Hour)})

	result, err := service.Apply(context.Background(), applicant.ID, opp.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Application.Status != application.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", result.Application.Status)
	}
	if result.PaymentLink != "" {
		t.Fatalf("expected no payment link, got %q", result.PaymentLink)
	}
	if gateway.initCalls != 0 {
		t.Fatalf("expected gateway not to be called, got %d calls", gateway.initCalls)
	}
}

func TestApplicationServiceWithdraw(t *testing.T) {
	apps := newFakeApplicationRepo()
	service := NewApplicationService(apps, newFakeOpportunityRepo(), newFakeUserRepo(), &fakeGateway{}, nil)

	owner := common.NewUUID()
	stranger := common.NewUUID()
	pending := apps.put(application.Application{UserID: owner, OpportunityID: common.NewUUID(), Status: application.StatusPendingPayment})
	reviewed := apps.put(application.Application{UserID: owner, OpportunityID: common.NewUUID(), Status: application.StatusUnderReview})

	if err := service.Withdraw(context.Background(), stranger, pending.ID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden for other user, got %v", err)
	}
	if err := service.Withdraw(context.Background(), owner, reviewed.ID); !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict once under review, got %v", err)
	}
	if err := service.Withdraw(context.Background(), owner, pending.ID); err != nil {
		t.Fatalf("expected withdraw to succeed, got %v", err)
	}
	if _, err := apps.GetByID(context.Background(), pending.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected application to be deleted, got %v", err)
	}
}

func TestApplicationServiceAdminSetStatus(t *testing.T) {
	apps := newFakeApplicationRepo()
	service := NewApplicationService(apps, newFakeOpportunityRepo(), newFakeUserRepo(), &fakeGateway{}, nil)

	app := apps.put(application.Application{UserID: common.NewUUID(), OpportunityID: common.NewUUID(), Status: application.StatusSubmitted})

	if _, err := service.AdminSetStatus(context.Background(), app.ID, "approved"); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
	if _, err := service.AdminSetStatus(context.Background(), app.ID, application.StatusPendingPayment); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for pending_payment, got %v", err)
	}

	updated, err := service.AdminSetStatus(context.Background(), app.ID, " Shortlisted ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != application.StatusShortlisted {
		t.Fatalf("expected shortlisted, got %s", updated.Status)
	}
}
