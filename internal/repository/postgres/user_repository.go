package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, name, phone, authorization_code, created_at FROM users WHERE id = $1`, id)
	var u user.User
	var phone, authCode sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &phone, &authCode, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	u.Phone = phone.String
	u.AuthorizationCode = authCode.String
	return &u, nil
}

func (r *UserRepository) SaveAuthorizationCode(ctx context.Context, id common.UUID, code string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET authorization_code = $1, updated_at = $2 WHERE id = $3`, code, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to store authorization code", err)
	}
	return nil
}
