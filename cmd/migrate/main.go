package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"fest-backend/internal/config"
	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	"fest-backend/internal/service"
	"fest-backend/internal/service/auth"
	"fest-backend/pkg/database"
	"fest-backend/pkg/logger"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "manage the fest database schema and demo data",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "create tables, constraints and indexes",
				Action: func(c *cli.Context) error {
					return withConn(c.Context, func(conn *pgx.Conn) error {
						if err := execAll(c.Context, conn, repository.SchemaStatements); err != nil {
							return fmt.Errorf("failed to create tables: %w", err)
						}
						fmt.Println("✅ All tables created successfully")
						return nil
					})
				},
			},
			{
				Name:  "drop",
				Usage: "drop every fest table",
				Action: func(c *cli.Context) error {
					return withConn(c.Context, func(conn *pgx.Conn) error {
						if err := execAll(c.Context, conn, repository.DropStatements); err != nil {
							return fmt.Errorf("failed to drop tables: %w", err)
						}
						fmt.Println("✅ All tables dropped successfully")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "insert demo accounts and one team event",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "participants", Value: 8, Usage: "number of participant accounts"},
					&cli.StringFlag{Name: "institution", Value: "demo-institute", Usage: "institution shared by the demo accounts"},
				},
				Action: seed,
			},
			{
				Name:  "token",
				Usage: "issue a session token for local testing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "user id (uuid)"},
					&cli.StringFlag{Name: "role", Value: string(domain.RoleParticipant), Usage: "participant, crew, organizer or admin"},
					&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour},
				},
				Action: issueToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withConn(ctx context.Context, fn func(conn *pgx.Conn) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)
	return fn(conn)
}

func execAll(ctx context.Context, conn *pgx.Conn, statements []string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type seededUser struct {
	id   string
	role domain.Role
}

func insertUser(ctx context.Context, pool database.DBTX, role domain.Role, institution string) (seededUser, error) {
	u := seededUser{role: role}
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, name, role, payment_status, profile_completed, institution_id)
		 VALUES ($1, $2, $3, 'PAID', TRUE, $4)
		 RETURNING id`,
		gofakeit.Email(), gofakeit.Name(), string(role), institution,
	).Scan(&u.id)
	return u, err
}

func seed(c *cli.Context) error {
	ctx := c.Context
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	institution := c.String("institution")
	organizer, err := insertUser(ctx, db.Pool, domain.RoleOrganizer, institution)
	if err != nil {
		return fmt.Errorf("seed organizer: %w", err)
	}
	crew, err := insertUser(ctx, db.Pool, domain.RoleCrew, institution)
	if err != nil {
		return fmt.Errorf("seed crew: %w", err)
	}
	users := []seededUser{organizer, crew}
	for i := 0; i < c.Int("participants"); i++ {
		u, err := insertUser(ctx, db.Pool, domain.RoleParticipant, institution)
		if err != nil {
			return fmt.Errorf("seed participant: %w", err)
		}
		users = append(users, u)
	}

	now := time.Now().UTC().Truncate(time.Hour)
	events := service.NewEventService(repository.NewPostgresStore(db), nil, log.Logger)
	agg, err := events.CreateEvent(ctx, domain.Identity{UserID: organizer.id, Role: organizer.role}, &domain.EventAggregate{
		Event: domain.Event{
			Name:        "Robo Wars " + gofakeit.City(),
			Mode:        domain.ModeTeam,
			Capacity:    32,
			MinTeamSize: 2,
			MaxTeamSize: 4,
			OpensAt:     now.Add(-24 * time.Hour),
			ClosesAt:    now.Add(7 * 24 * time.Hour),
		},
		Rounds: []*domain.Round{
			{Number: 1, StartsAt: now.Add(8 * 24 * time.Hour), EndsAt: now.Add(8*24*time.Hour + 3*time.Hour)},
			{Number: 2, StartsAt: now.Add(9 * 24 * time.Hour), EndsAt: now.Add(9*24*time.Hour + 3*time.Hour)},
		},
		Rules:  []*domain.Rule{{Text: "Bots must weigh under 15kg"}, {Text: "No wireless jammers"}},
		Prizes: []*domain.Prize{{Position: 1, Reward: "Trophy"}, {Position: 2, Reward: "Medal"}},
		Crew:   []*domain.CrewMember{{UserID: crew.id, Duty: "arena check-in"}},
	})
	if err != nil {
		return fmt.Errorf("seed event: %w", err)
	}

	fmt.Printf("✅ Seeded event %s (%s)\n", agg.Name, agg.ID)
	for _, u := range users {
		fmt.Printf("   %-11s %s\n", u.role, u.id)
	}
	return nil
}

func issueToken(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	role := domain.Role(c.String("role"))
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	token, err := auth.NewService(cfg.JWTSecret, auth.Issuer, nil).Issue(c.String("user"), role, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
