package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
)

// Client talks to the internal notification service that owns template
// rendering and actual email delivery.
type Client struct {
	baseURL     string
	internalKey string
	http        *http.Client
}

func NewClient(baseURL, internalKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, internalKey: internalKey, http: httpClient}
}

type reminderPayload struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	OpportunityTitle string `json:"opportunity_title"`
	ApplicationID    string `json:"application_id"`
	Template         string `json:"template"`
}

func (c *Client) SendPaymentReminder(ctx context.Context, to user.User, opp opportunity.Opportunity, app application.Application) error {
	if c.baseURL == "" {
		return common.NewError(common.CodeConfiguration, "mailer base url is not configured", nil)
	}
	payload := reminderPayload{
		Email:            to.Email,
		Name:             to.Name,
		OpportunityTitle: opp.Title,
		ApplicationID:    app.ID.String(),
		Template:         "payment_reminder",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to encode reminder payload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/notifications", bytes.NewReader(body))
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to build reminder request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Key", c.internalKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return common.NewError(common.CodeGateway, "notification service unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return common.NewError(common.CodeGateway, fmt.Sprintf("notification service returned %d", resp.StatusCode), nil)
	}
	return nil
}
