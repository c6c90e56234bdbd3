package repository

import (
	"context"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"
)

type invitationRepo struct {
	db database.DBTX
}

func (r *invitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (team_id, invitee_id, inviter_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at
	`
	err := r.db.QueryRow(ctx, query, inv.TeamID, inv.InviteeID, inv.InviterID).
		Scan(&inv.ID, &inv.Status, &inv.CreatedAt)
	return translate(err, "create invitation", inv.InviteeID)
}

func (r *invitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `
		SELECT i.id, i.team_id, t.name, i.invitee_id, u.email, i.inviter_id, i.status, i.created_at, i.responded_at
		FROM invitations i
		JOIN teams t ON t.id = i.team_id
		JOIN users u ON u.id = i.invitee_id
		WHERE i.id = $1
	`
	var inv domain.Invitation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.TeamName,
		&inv.InviteeID,
		&inv.InviteeMail,
		&inv.InviterID,
		&inv.Status,
		&inv.CreatedAt,
		&inv.RespondedAt,
	)
	if err != nil {
		return nil, translate(err, "get invitation", id)
	}
	return &inv, nil
}

func (r *invitationRepo) HasPending(ctx context.Context, teamID, inviteeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invitations WHERE team_id = $1 AND invitee_id = $2 AND status = 'pending')`,
		teamID, inviteeID,
	).Scan(&exists)
	return exists, translate(err, "check pending invitation", inviteeID)
}

func (r *invitationRepo) Resolve(ctx context.Context, id string, status domain.InvitationStatus, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invitations SET status = $2, responded_at = $3 WHERE id = $1 AND status = 'pending'`,
		id, status, at,
	)
	if err != nil {
		return translate(err, "resolve invitation", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *invitationRepo) DeletePending(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invitations WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return translate(err, "delete invitation", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *invitationRepo) ListPendingForInvitee(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return r.listPending(ctx, `i.invitee_id = $1`, userID)
}

func (r *invitationRepo) ListPendingForTeam(ctx context.Context, teamID string) ([]*domain.Invitation, error) {
	return r.listPending(ctx, `i.team_id = $1`, teamID)
}

func (r *invitationRepo) listPending(ctx context.Context, where string, arg string) ([]*domain.Invitation, error) {
	query := `
		SELECT i.id, i.team_id, t.name, i.invitee_id, u.email, i.inviter_id, i.status, i.created_at, i.responded_at
		FROM invitations i
		JOIN teams t ON t.id = i.team_id
		JOIN users u ON u.id = i.invitee_id
		WHERE i.status = 'pending' AND ` + where + `
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, translate(err, "list invitations", "")
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(
			&inv.ID,
			&inv.TeamID,
			&inv.TeamName,
			&inv.InviteeID,
			&inv.InviteeMail,
			&inv.InviterID,
			&inv.Status,
			&inv.CreatedAt,
			&inv.RespondedAt,
		); err != nil {
			return nil, translate(err, "scan invitation", "")
		}
		out = append(out, &inv)
	}
	return out, translate(rows.Err(), "list invitations", "")
}
