package repository

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"
)

type prizeRepo struct {
	db database.DBTX
}

func (r *prizeRepo) CreateAward(ctx context.Context, award *domain.PrizeAward) error {
	key := ""
	if award.UserID != nil {
		key = *award.UserID
	} else if award.TeamID != nil {
		key = *award.TeamID
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO prize_awards (prize_id, user_id, team_id, awarded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, awarded_at`,
		award.PrizeID, award.UserID, award.TeamID, award.AwardedBy,
	).Scan(&award.ID, &award.AwardedAt)
	return translate(err, "create prize award", key)
}
