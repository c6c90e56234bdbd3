package repository

import (
	"context"

	"fest-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	db    *database.PostgresDB
	repos *Repositories
}

// NewPostgresStore binds repositories to the primary pool for writes and to
// the read pool for list and page queries.
func NewPostgresStore(db *database.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db:    db,
		repos: newRepositories(db.Pool, db.ReadPool),
	}
}

func (s *PostgresStore) Repos() *Repositories {
	return s.repos
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(newRepositories(tx, tx))
	})
}

func newRepositories(db, read database.DBTX) *Repositories {
	return &Repositories{
		Users:         &userRepo{db: db},
		Teams:         &teamRepo{db: db},
		Invitations:   &invitationRepo{db: db},
		Events:        &eventRepo{db: db, read: read},
		Registrations: &registrationRepo{db: db},
		CheckIns:      &checkInRepo{db: db},
		Results:       &resultRepo{db: db, read: read},
		Prizes:        &prizeRepo{db: db},
	}
}
