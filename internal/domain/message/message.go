package message

import (
	"time"

	"applygate/internal/common"
)

type Type string

const (
	TypePaymentReminder    Type = "payment_reminder"
	TypeCompletionReminder Type = "completion_reminder"
	TypeOffer              Type = "offer"
	TypeStatusUpdate       Type = "status_update"
)

// Message is an append-only ledger entry recording a notification that was
// actually delivered. Nothing mutates an entry after creation except the read
// flag toggled from the inbox.
type Message struct {
	ID            common.UUID `json:"id"`
	UserID        common.UUID `json:"user_id"`
	ApplicationID common.UUID `json:"application_id"`
	OpportunityID common.UUID `json:"opportunity_id"`
	Type          Type        `json:"type"`
	Subject       string      `json:"subject"`
	Content       string      `json:"content"`
	Read          bool        `json:"read"`
	EmailSent     bool        `json:"email_sent"`
	SentAt        time.Time   `json:"sent_at"`
}
