package repository

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"
)

type resultRepo struct {
	db   database.DBTX
	read database.DBTX
}

// Upsert lets an evaluator correct a result; the latest write wins.
func (r *resultRepo) Upsert(ctx context.Context, res *domain.RoundResult) error {
	conflictTarget := "(round_id, user_id)"
	key := ""
	if res.TeamID != nil {
		conflictTarget = "(round_id, team_id)"
		key = *res.TeamID
	} else if res.UserID != nil {
		key = *res.UserID
	}

	query := `
		INSERT INTO round_results (round_id, user_id, team_id, points, status, evaluated_by, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT ` + conflictTarget + ` DO UPDATE
		SET points = EXCLUDED.points,
		    status = EXCLUDED.status,
		    evaluated_by = EXCLUDED.evaluated_by,
		    evaluated_at = EXCLUDED.evaluated_at
		RETURNING id, evaluated_at
	`
	err := r.db.QueryRow(ctx, query,
		res.RoundID,
		res.UserID,
		res.TeamID,
		res.Points,
		res.Status,
		res.EvaluatedBy,
	).Scan(&res.ID, &res.EvaluatedAt)
	return translate(err, "upsert round result", key)
}

const resultColumns = `id, round_id, user_id, team_id, points, status, evaluated_by, evaluated_at`

func (r *resultRepo) GetForUser(ctx context.Context, roundID, userID string) (*domain.RoundResult, error) {
	return r.get(ctx, `SELECT `+resultColumns+` FROM round_results WHERE round_id = $1 AND user_id = $2`, roundID, userID)
}

func (r *resultRepo) GetForTeam(ctx context.Context, roundID, teamID string) (*domain.RoundResult, error) {
	return r.get(ctx, `SELECT `+resultColumns+` FROM round_results WHERE round_id = $1 AND team_id = $2`, roundID, teamID)
}

func (r *resultRepo) get(ctx context.Context, query, roundID, target string) (*domain.RoundResult, error) {
	var res domain.RoundResult
	err := r.db.QueryRow(ctx, query, roundID, target).Scan(
		&res.ID,
		&res.RoundID,
		&res.UserID,
		&res.TeamID,
		&res.Points,
		&res.Status,
		&res.EvaluatedBy,
		&res.EvaluatedAt,
	)
	if err != nil {
		return nil, translate(err, "get round result", target)
	}
	return &res, nil
}

func (r *resultRepo) ListPage(ctx context.Context, roundID string, limit, offset int) ([]*domain.RoundResultEntry, int, error) {
	var total int
	if err := r.read.QueryRow(ctx, `SELECT COUNT(*) FROM round_results WHERE round_id = $1`, roundID).Scan(&total); err != nil {
		return nil, 0, translate(err, "count round results", roundID)
	}

	rows, err := r.read.Query(ctx, `
		SELECT rr.id, rr.round_id, rr.user_id, rr.team_id, rr.points, rr.status, rr.evaluated_by, rr.evaluated_at,
		       COALESCE(u.name, ''), COALESCE(t.name, '')
		FROM round_results rr
		LEFT JOIN users u ON u.id = rr.user_id
		LEFT JOIN teams t ON t.id = rr.team_id
		WHERE rr.round_id = $1
		ORDER BY rr.points DESC, rr.evaluated_at ASC, rr.id
		LIMIT $2 OFFSET $3`,
		roundID, limit, offset,
	)
	if err != nil {
		return nil, 0, translate(err, "list round results", roundID)
	}
	defer rows.Close()

	var entries []*domain.RoundResultEntry
	for rows.Next() {
		var e domain.RoundResultEntry
		if err := rows.Scan(
			&e.ID,
			&e.RoundID,
			&e.UserID,
			&e.TeamID,
			&e.Points,
			&e.Status,
			&e.EvaluatedBy,
			&e.EvaluatedAt,
			&e.UserName,
			&e.TeamName,
		); err != nil {
			return nil, 0, translate(err, "scan round result", roundID)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "list round results", roundID)
	}
	return entries, total, nil
}
