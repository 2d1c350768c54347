package user

import (
	"context"

	"applygate/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	SaveAuthorizationCode(ctx context.Context, id common.UUID, code string) error
}
