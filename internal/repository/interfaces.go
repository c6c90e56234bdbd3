package repository

import (
	"context"
	"time"

	"fest-backend/internal/domain"
)

// UserRepository defines read access to participant accounts
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs retrieves every user whose id is in ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	// GetByEmails retrieves users by case-insensitive email match
	GetByEmails(ctx context.Context, emails []string) ([]*domain.User, error)
}

// TeamRepository defines team and membership operations
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)

	// LockByID reads the team with a row lock held until the transaction ends.
	// Membership changes and event binding take it first.
	LockByID(ctx context.Context, id string) (*domain.Team, error)
	NameTaken(ctx context.Context, name string) (bool, error)

	// Rename and Delete only touch unlocked teams and return ErrStateChanged otherwise
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error

	// BindEvent locks the team to an event; ErrStateChanged if already locked
	BindEvent(ctx context.Context, id, eventID string) error

	// AddMember and RemoveMember only touch existing unlocked teams and return
	// ErrStateChanged otherwise. RemoveMember returns ErrNotFound for a non-member.
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)

	// ListMembers returns members of all given teams joined with user identity
	ListMembers(ctx context.Context, teamIDs []string) ([]*domain.TeamMember, error)

	// FindByEventMember returns the team bound to eventID that has userID as a member
	FindByEventMember(ctx context.Context, eventID, userID string) (*domain.Team, error)
}

// InvitationRepository defines invitation workflow persistence
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	HasPending(ctx context.Context, teamID, inviteeID string) (bool, error)

	// Resolve moves a pending invitation to status; ErrStateChanged if it was not pending
	Resolve(ctx context.Context, id string, status domain.InvitationStatus, at time.Time) error

	// DeletePending removes a pending invitation; ErrStateChanged if it was not pending
	DeletePending(ctx context.Context, id string) error

	ListPendingForInvitee(ctx context.Context, userID string) ([]*domain.Invitation, error)
	ListPendingForTeam(ctx context.Context, teamID string) ([]*domain.Invitation, error)
}

// EventRepository defines the event catalogue
type EventRepository interface {
	Create(ctx context.Context, ev *domain.Event) error
	AddRound(ctx context.Context, round *domain.Round) error
	AddRule(ctx context.Context, rule *domain.Rule) error
	AddPrize(ctx context.Context, prize *domain.Prize) error
	AddCrew(ctx context.Context, crew *domain.CrewMember) error

	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// LockByID reads the event with a row lock; only meaningful inside a transaction
	LockByID(ctx context.Context, id string) (*domain.Event, error)

	List(ctx context.Context) ([]*domain.Event, error)
	GetRound(ctx context.Context, eventID string, number int) (*domain.Round, error)

	// GetFinalRound returns the round with the highest number
	GetFinalRound(ctx context.Context, eventID string) (*domain.Round, error)
	GetPrizeByPosition(ctx context.Context, eventID string, position int) (*domain.Prize, error)

	ListRounds(ctx context.Context, eventIDs []string) ([]*domain.Round, error)
	ListRules(ctx context.Context, eventIDs []string) ([]*domain.Rule, error)
	ListPrizes(ctx context.Context, eventIDs []string) ([]*domain.Prize, error)
	ListCrew(ctx context.Context, eventIDs []string) ([]*domain.CrewMember, error)
}

// RegistrationRepository binds entrants to events
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	CountForEvent(ctx context.Context, eventID string) (int, error)
	ExistsForUser(ctx context.Context, eventID, userID string) (bool, error)
	ExistsForTeam(ctx context.Context, eventID, teamID string) (bool, error)
}

// CheckInRepository records round admissions
type CheckInRepository interface {
	// Create returns a *ConflictError keyed by user id when the user is already checked in
	Create(ctx context.Context, c *domain.CheckIn) error
	ListForRound(ctx context.Context, roundID string, userIDs []string) ([]*domain.CheckIn, error)
	UserCheckedIn(ctx context.Context, roundID, userID string) (bool, error)
	TeamCheckedIn(ctx context.Context, roundID, teamID string) (bool, error)
}

// ResultRepository records round evaluations
type ResultRepository interface {
	// Upsert inserts or replaces the result for (round, target)
	Upsert(ctx context.Context, r *domain.RoundResult) error
	GetForUser(ctx context.Context, roundID, userID string) (*domain.RoundResult, error)
	GetForTeam(ctx context.Context, roundID, teamID string) (*domain.RoundResult, error)

	// ListPage returns one page ordered by points desc plus the total row count
	ListPage(ctx context.Context, roundID string, limit, offset int) ([]*domain.RoundResultEntry, int, error)
}

// PrizeRepository records prize awards
type PrizeRepository interface {
	CreateAward(ctx context.Context, award *domain.PrizeAward) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Teams         TeamRepository
	Invitations   InvitationRepository
	Events        EventRepository
	Registrations RegistrationRepository
	CheckIns      CheckInRepository
	Results       ResultRepository
	Prizes        PrizeRepository
}

// Store hands out repositories bound either to the pool or to a transaction.
type Store interface {
	Repos() *Repositories

	// WithinTx runs fn with repositories bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx *Repositories) error) error
}
