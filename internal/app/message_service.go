package app

import (
	"context"

	"applygate/internal/common"
	"applygate/internal/domain/message"
)

type MessageService struct {
	messages message.Repository
}

func NewMessageService(messages message.Repository) *MessageService {
	return &MessageService{messages: messages}
}

func (s *MessageService) List(ctx context.Context, userID common.UUID, limit, offset int) ([]message.Message, error) {
	if limit <= 0 || limit > 100 {
		return nil, common.NewValidationError("invalid limit", map[string]string{"limit": "limit must be between 1 and 100"})
	}
	if offset < 0 {
		return nil, common.NewValidationError("invalid offset", map[string]string{"offset": "offset must be >= 0"})
	}
	return s.messages.ListByUser(ctx, userID, limit, offset)
}

func (s *MessageService) MarkRead(ctx context.Context, id, userID common.UUID) error {
	return s.messages.MarkRead(ctx, id, userID)
}
