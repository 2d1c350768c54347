package opportunity

import (
	"context"

	"applygate/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*Opportunity, error)
}
