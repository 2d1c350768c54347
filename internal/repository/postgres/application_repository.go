package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"applygate/internal/common"
	"applygate/internal/domain/application"
)

const applicationColumns = `id, user_id, opportunity_id, status, transaction_id, amount_paid, refunded_at, refund_amount, refund_transfer_code, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, user_id, opportunity_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.UserID, app.OpportunityID, app.Status, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, common.NewError(common.CodeConflict, "already applied", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) FindByUserAndOpportunity(ctx context.Context, userID, opportunityID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 AND opportunity_id = $2`, userID, opportunityID)
	return scanApplication(row)
}

func (r *ApplicationRepository) FindByTransferCode(ctx context.Context, transferCode string) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE refund_transfer_code = $1`, transferCode)
	return scanApplication(row)
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE status = $1 AND created_at < $2 ORDER BY created_at`, application.StatusPendingPayment, cutoff)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stale applications", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// ConfirmPayment is the sole synchronization point for the confirming
// transition: the status predicate makes the write a no-op for every event
// after the first.
func (r *ApplicationRepository) ConfirmPayment(ctx context.Context, id common.UUID, transactionID string, amount float64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications
		SET status = $1, transaction_id = $2, amount_paid = $3, updated_at = $4
		WHERE id = $5 AND status = $6`,
		application.StatusSubmitted, nullString(transactionID), amount, time.Now().UTC(), id, application.StatusPendingPayment)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to confirm payment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to confirm payment", err)
	}
	return affected == 1, nil
}

func (r *ApplicationRepository) ClaimRefund(ctx context.Context, id common.UUID, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications
		SET refunded_at = $1, updated_at = $2
		WHERE id = $3 AND status <> $4 AND refunded_at IS NULL`,
		at, time.Now().UTC(), id, application.StatusPendingPayment)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to claim refund", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to claim refund", err)
	}
	return affected == 1, nil
}

func (r *ApplicationRepository) ReleaseRefundClaim(ctx context.Context, id common.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET refunded_at = NULL, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to release refund claim", err)
	}
	return nil
}

func (r *ApplicationRepository) SetRefundResult(ctx context.Context, id common.UUID, amount float64, transferCode string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET refund_amount = $1, refund_transfer_code = $2, updated_at = $3 WHERE id = $4`,
		amount, nullString(transferCode), time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to record refund result", err)
	}
	return nil
}

func (r *ApplicationRepository) ClearRefundResult(ctx context.Context, id common.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET refund_amount = NULL, refund_transfer_code = NULL, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to clear refund result", err)
	}
	return nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	_, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id common.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	var transactionID, transferCode sql.NullString
	if err := row.Scan(&app.ID, &app.UserID, &app.OpportunityID, &app.Status, &transactionID, &app.AmountPaid, &app.RefundedAt, &app.RefundAmount, &transferCode, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	app.TransactionID = transactionID.String
	app.RefundTransferCode = transferCode.String
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]application.Application, error) {
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to scan applications", err)
	}
	return items, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
