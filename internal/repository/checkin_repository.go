package repository

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

type checkInRepo struct {
	db database.DBTX
}

func (r *checkInRepo) Create(ctx context.Context, c *domain.CheckIn) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO check_ins (round_id, user_id, team_id, checked_in_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, checked_in_at`,
		c.RoundID, c.UserID, c.TeamID, c.CheckedInBy,
	).Scan(&c.ID, &c.CheckedInAt)
	return translate(err, "create check-in", c.UserID)
}

func (r *checkInRepo) ListForRound(ctx context.Context, roundID string, userIDs []string) ([]*domain.CheckIn, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, round_id, user_id, team_id, checked_in_by, checked_in_at
		FROM check_ins
		WHERE round_id = $1 AND user_id = ANY($2::uuid[])`,
		roundID, userIDs,
	)
	if err != nil {
		return nil, translate(err, "list check-ins", roundID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.CheckIn, error) {
		var c domain.CheckIn
		err := row.Scan(&c.ID, &c.RoundID, &c.UserID, &c.TeamID, &c.CheckedInBy, &c.CheckedInAt)
		return &c, err
	})
}

func (r *checkInRepo) UserCheckedIn(ctx context.Context, roundID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM check_ins WHERE round_id = $1 AND user_id = $2)`,
		roundID, userID,
	).Scan(&exists)
	return exists, translate(err, "check user check-in", userID)
}

func (r *checkInRepo) TeamCheckedIn(ctx context.Context, roundID, teamID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM check_ins WHERE round_id = $1 AND team_id = $2)`,
		roundID, teamID,
	).Scan(&exists)
	return exists, translate(err, "check team check-in", teamID)
}
