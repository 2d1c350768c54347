package user

import (
	"time"

	"applygate/internal/common"
)

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID       common.UUID `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone,omitempty"`
	// AuthorizationCode is the reusable payment-method token returned by the
	// gateway after a successful card charge.
	AuthorizationCode string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}
