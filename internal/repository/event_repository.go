package repository

import (
	"context"
	"strconv"

	"fest-backend/internal/domain"
	"fest-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

type eventRepo struct {
	db   database.DBTX
	read database.DBTX
}

const eventColumns = `id, name, mode, capacity, min_team_size, max_team_size, opens_at, closes_at, created_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Mode,
		&e.Capacity,
		&e.MinTeamSize,
		&e.MaxTeamSize,
		&e.OpensAt,
		&e.ClosesAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) Create(ctx context.Context, ev *domain.Event) error {
	query := `
		INSERT INTO events (name, mode, capacity, min_team_size, max_team_size, opens_at, closes_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		ev.Name,
		ev.Mode,
		ev.Capacity,
		ev.MinTeamSize,
		ev.MaxTeamSize,
		ev.OpensAt,
		ev.ClosesAt,
	).Scan(&ev.ID, &ev.CreatedAt)
	return translate(err, "create event", ev.Name)
}

func (r *eventRepo) AddRound(ctx context.Context, round *domain.Round) error {
	query := `
		INSERT INTO rounds (event_id, number, starts_at, ends_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, round.EventID, round.Number, round.StartsAt, round.EndsAt).Scan(&round.ID)
	return translate(err, "add round", strconv.Itoa(round.Number))
}

func (r *eventRepo) AddRule(ctx context.Context, rule *domain.Rule) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO rules (event_id, position, text) VALUES ($1, $2, $3) RETURNING id`,
		rule.EventID, rule.Position, rule.Text,
	).Scan(&rule.ID)
	return translate(err, "add rule", strconv.Itoa(rule.Position))
}

func (r *eventRepo) AddPrize(ctx context.Context, prize *domain.Prize) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO prizes (event_id, position, reward) VALUES ($1, $2, $3) RETURNING id`,
		prize.EventID, prize.Position, prize.Reward,
	).Scan(&prize.ID)
	return translate(err, "add prize", strconv.Itoa(prize.Position))
}

func (r *eventRepo) AddCrew(ctx context.Context, crew *domain.CrewMember) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO event_crew (event_id, user_id, duty) VALUES ($1, $2, $3)`,
		crew.EventID, crew.UserID, crew.Duty,
	)
	return translate(err, "add crew member", crew.UserID)
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get event", id)
	}
	return e, nil
}

func (r *eventRepo) LockByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, "lock event", id)
	}
	return e, nil
}

func (r *eventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	rows, err := r.read.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY opens_at ASC, name ASC`)
	if err != nil {
		return nil, translate(err, "list events", "")
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, translate(err, "scan event", "")
		}
		events = append(events, e)
	}
	return events, translate(rows.Err(), "list events", "")
}

func (r *eventRepo) GetRound(ctx context.Context, eventID string, number int) (*domain.Round, error) {
	var rd domain.Round
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, number, starts_at, ends_at FROM rounds WHERE event_id = $1 AND number = $2`,
		eventID, number,
	).Scan(&rd.ID, &rd.EventID, &rd.Number, &rd.StartsAt, &rd.EndsAt)
	if err != nil {
		return nil, translate(err, "get round", strconv.Itoa(number))
	}
	return &rd, nil
}

func (r *eventRepo) GetFinalRound(ctx context.Context, eventID string) (*domain.Round, error) {
	var rd domain.Round
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, number, starts_at, ends_at FROM rounds WHERE event_id = $1 ORDER BY number DESC LIMIT 1`,
		eventID,
	).Scan(&rd.ID, &rd.EventID, &rd.Number, &rd.StartsAt, &rd.EndsAt)
	if err != nil {
		return nil, translate(err, "get final round", eventID)
	}
	return &rd, nil
}

func (r *eventRepo) GetPrizeByPosition(ctx context.Context, eventID string, position int) (*domain.Prize, error) {
	var p domain.Prize
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, position, reward FROM prizes WHERE event_id = $1 AND position = $2`,
		eventID, position,
	).Scan(&p.ID, &p.EventID, &p.Position, &p.Reward)
	if err != nil {
		return nil, translate(err, "get prize", strconv.Itoa(position))
	}
	return &p, nil
}

func (r *eventRepo) ListRounds(ctx context.Context, eventIDs []string) ([]*domain.Round, error) {
	rows, err := r.read.Query(ctx,
		`SELECT id, event_id, number, starts_at, ends_at FROM rounds WHERE event_id = ANY($1::uuid[]) ORDER BY number`,
		eventIDs,
	)
	if err != nil {
		return nil, translate(err, "list rounds", "")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Round, error) {
		var rd domain.Round
		err := row.Scan(&rd.ID, &rd.EventID, &rd.Number, &rd.StartsAt, &rd.EndsAt)
		return &rd, err
	})
}

func (r *eventRepo) ListRules(ctx context.Context, eventIDs []string) ([]*domain.Rule, error) {
	rows, err := r.read.Query(ctx,
		`SELECT id, event_id, position, text FROM rules WHERE event_id = ANY($1::uuid[]) ORDER BY position`,
		eventIDs,
	)
	if err != nil {
		return nil, translate(err, "list rules", "")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Rule, error) {
		var rule domain.Rule
		err := row.Scan(&rule.ID, &rule.EventID, &rule.Position, &rule.Text)
		return &rule, err
	})
}

func (r *eventRepo) ListPrizes(ctx context.Context, eventIDs []string) ([]*domain.Prize, error) {
	rows, err := r.read.Query(ctx,
		`SELECT id, event_id, position, reward FROM prizes WHERE event_id = ANY($1::uuid[]) ORDER BY position`,
		eventIDs,
	)
	if err != nil {
		return nil, translate(err, "list prizes", "")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Prize, error) {
		var p domain.Prize
		err := row.Scan(&p.ID, &p.EventID, &p.Position, &p.Reward)
		return &p, err
	})
}

func (r *eventRepo) ListCrew(ctx context.Context, eventIDs []string) ([]*domain.CrewMember, error) {
	rows, err := r.read.Query(ctx, `
		SELECT c.event_id, c.user_id, u.name, c.duty
		FROM event_crew c
		JOIN users u ON u.id = c.user_id
		WHERE c.event_id = ANY($1::uuid[])
		ORDER BY u.name`,
		eventIDs,
	)
	if err != nil {
		return nil, translate(err, "list crew", "")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.CrewMember, error) {
		var c domain.CrewMember
		err := row.Scan(&c.EventID, &c.UserID, &c.Name, &c.Duty)
		return &c, err
	})
}
