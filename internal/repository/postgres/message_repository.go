package postgres

import (
	"context"
	"database/sql"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/message"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg message.Message) (*message.Message, error) {
	msg.ID = common.NewUUID()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (id, user_id, application_id, opportunity_id, type, subject, content, read, email_sent, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		msg.ID, msg.UserID, msg.ApplicationID, msg.OpportunityID, msg.Type, msg.Subject, msg.Content, msg.Read, msg.EmailSent, msg.SentAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create message", err)
	}
	return &msg, nil
}

func (r *MessageRepository) CountByApplicationAndType(ctx context.Context, applicationID common.UUID, msgType message.Type) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE application_id = $1 AND type = $2`, applicationID, msgType)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count messages", err)
	}
	return count, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID common.UUID, limit, offset int) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, application_id, opportunity_id, type, subject, content, read, email_sent, sent_at
		FROM messages WHERE user_id = $1 ORDER BY sent_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list messages", err)
	}
	defer rows.Close()
	var items []message.Message
	for rows.Next() {
		var msg message.Message
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.ApplicationID, &msg.OpportunityID, &msg.Type, &msg.Subject, &msg.Content, &msg.Read, &msg.EmailSent, &msg.SentAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan message", err)
		}
		items = append(items, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to scan messages", err)
	}
	return items, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id, userID common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to mark message read", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to mark message read", err)
	}
	if affected == 0 {
		return common.NewError(common.CodeNotFound, "message not found", nil)
	}
	return nil
}
