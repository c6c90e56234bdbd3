package repository

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"
)

type teamRepo struct {
	db database.DBTX
}

// Create inserts the team row and fills ID and CreatedAt.
func (r *teamRepo) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (name, leader_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, team.Name, team.LeaderID).Scan(&team.ID, &team.CreatedAt)
	return translate(err, "create team", team.Name)
}

const teamColumns = `id, name, leader_id, event_id, created_at`

func (r *teamRepo) scanTeam(ctx context.Context, op, query, id string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.LeaderID, &t.EventID, &t.CreatedAt)
	if err != nil {
		return nil, translate(err, op, id)
	}
	return &t, nil
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.scanTeam(ctx, "get team", `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *teamRepo) LockByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.scanTeam(ctx, "lock team", `SELECT `+teamColumns+` FROM teams WHERE id = $1 FOR UPDATE`, id)
}

func (r *teamRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE name = $1)`, name).Scan(&exists)
	return exists, translate(err, "check team name", name)
}

func (r *teamRepo) Rename(ctx context.Context, id, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE teams SET name = $2 WHERE id = $1 AND event_id IS NULL`, id, name)
	if err != nil {
		return translate(err, "rename team", name)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *teamRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND event_id IS NULL`, id)
	if err != nil {
		return translate(err, "delete team", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *teamRepo) BindEvent(ctx context.Context, id, eventID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE teams SET event_id = $2 WHERE id = $1 AND event_id IS NULL`, id, eventID)
	if err != nil {
		return translate(err, "bind team to event", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *teamRepo) AddMember(ctx context.Context, teamID, userID string) error {
	query := `
		INSERT INTO team_members (team_id, user_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM teams WHERE id = $1 AND event_id IS NULL)
	`
	tag, err := r.db.Exec(ctx, query, teamID, userID)
	if err != nil {
		return translate(err, "add team member", userID)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	query := `
		DELETE FROM team_members
		WHERE team_id = $1 AND user_id = $2
		  AND EXISTS (SELECT 1 FROM teams WHERE id = $1 AND event_id IS NULL)
	`
	tag, err := r.db.Exec(ctx, query, teamID, userID)
	if err != nil {
		return translate(err, "remove team member", userID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var locked bool
	err = r.db.QueryRow(ctx, `SELECT event_id IS NOT NULL FROM teams WHERE id = $1`, teamID).Scan(&locked)
	if err != nil {
		return translate(err, "remove team member", userID)
	}
	if locked {
		return ErrStateChanged
	}
	return ErrNotFound
}

func (r *teamRepo) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`,
		teamID, userID,
	).Scan(&exists)
	return exists, translate(err, "check team membership", userID)
}

func (r *teamRepo) ListMembers(ctx context.Context, teamIDs []string) ([]*domain.TeamMember, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT tm.team_id, tm.user_id, u.name, u.email, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = ANY($1::uuid[])
		ORDER BY tm.joined_at ASC, u.name ASC
	`
	rows, err := r.db.Query(ctx, query, teamIDs)
	if err != nil {
		return nil, translate(err, "list team members", "")
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, translate(err, "scan team member", "")
		}
		members = append(members, &m)
	}
	return members, translate(rows.Err(), "list team members", "")
}

func (r *teamRepo) FindByEventMember(ctx context.Context, eventID, userID string) (*domain.Team, error) {
	query := `
		SELECT t.id, t.name, t.leader_id, t.event_id, t.created_at
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE t.event_id = $1 AND tm.user_id = $2
		LIMIT 1
	`
	var t domain.Team
	err := r.db.QueryRow(ctx, query, eventID, userID).Scan(&t.ID, &t.Name, &t.LeaderID, &t.EventID, &t.CreatedAt)
	if err != nil {
		return nil, translate(err, "find team by event member", userID)
	}
	return &t, nil
}
