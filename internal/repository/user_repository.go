package repository

import (
	"context"
	"strings"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

type userRepo struct {
	db database.DBTX
}

const userColumns = `id, email, name, role, payment_status, profile_completed, institution_id, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PaymentStatus,
		&u.ProfileCompleted,
		&u.InstitutionID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "get user", id)
	}
	return u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`
	return r.list(ctx, "get users by id", query, ids)
}

func (r *userRepo) GetByEmails(ctx context.Context, emails []string) ([]*domain.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = ANY($1::text[])`
	return r.list(ctx, "get users by email", query, lowered)
}

func (r *userRepo) list(ctx context.Context, op, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, op, "")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, op, "")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, op, "")
	}
	return users, nil
}
