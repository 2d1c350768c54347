package opportunity

import (
	"time"

	"applygate/internal/common"
)

type Opportunity struct {
	ID        common.UUID `json:"id"`
	Title     string      `json:"title"`
	FeeAmount float64     `json:"fee_amount"`
	Active    bool        `json:"active"`
	Deadline  time.Time   `json:"deadline"`
	CreatedAt time.Time   `json:"created_at"`
}

func (o Opportunity) Open(now time.Time) bool {
	return o.Active && now.Before(o.Deadline)
}
