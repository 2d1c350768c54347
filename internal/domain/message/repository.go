package message

import (
	"context"

	"applygate/internal/common"
)

type Repository interface {
	Create(ctx context.Context, msg Message) (*Message, error)
	CountByApplicationAndType(ctx context.Context, applicationID common.UUID, msgType Type) (int, error)
	ListByUser(ctx context.Context, userID common.UUID, limit, offset int) ([]Message, error)
	MarkRead(ctx context.Context, id, userID common.UUID) error
}
