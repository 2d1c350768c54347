package postgres

import (
	"context"
	"database/sql"
	"errors"

	"applygate/internal/common"
	"applygate/internal/domain/opportunity"
)

type OpportunityRepository struct {
	db *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id common.UUID) (*opportunity.Opportunity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, fee_amount, active, deadline, created_at FROM opportunities WHERE id = $1`, id)
	var opp opportunity.Opportunity
	if err := row.Scan(&opp.ID, &opp.Title, &opp.FeeAmount, &opp.Active, &opp.Deadline, &opp.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "opportunity not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load opportunity", err)
	}
	return &opp, nil
}
