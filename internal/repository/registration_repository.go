package repository

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"
)

type registrationRepo struct {
	db database.DBTX
}

func (r *registrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	key := ""
	switch {
	case reg.UserID != nil:
		key = *reg.UserID
	case reg.TeamID != nil:
		key = *reg.TeamID
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO registrations (event_id, user_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		reg.EventID, reg.UserID, reg.TeamID,
	).Scan(&reg.ID, &reg.CreatedAt)
	return translate(err, "create registration", key)
}

func (r *registrationRepo) CountForEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&n)
	return n, translate(err, "count registrations", eventID)
}

func (r *registrationRepo) ExistsForUser(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, translate(err, "check user registration", userID)
}

func (r *registrationRepo) ExistsForTeam(ctx context.Context, eventID, teamID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND team_id = $2)`,
		eventID, teamID,
	).Scan(&exists)
	return exists, translate(err, "check team registration", teamID)
}
