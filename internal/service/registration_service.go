package service

import (
	"context"
	"errors"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	apperrors "fest-backend/pkg/errors"

	"go.uber.org/zap"
)

// RegistrationService binds solo entrants and teams to events.
type RegistrationService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRegistrationService(store repository.Store, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterSolo registers userID for a solo event. The event row is locked for
// the duration of the capacity check and insert.
func (s *RegistrationService) RegisterSolo(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	if _, err := s.store.Repos().Users.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, ReasonUserNotFound, "User not found", "load user")
	}

	reg := &domain.Registration{EventID: eventID, UserID: &userID}
	err := s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		ev, err := s.openEvent(ctx, tx, eventID, domain.ModeSolo)
		if err != nil {
			return err
		}
		if err := s.checkCapacity(ctx, tx, ev); err != nil {
			return err
		}
		return tx.Registrations.Create(ctx, reg)
	})
	if err != nil {
		return nil, registrationErr(err, "register for event")
	}

	s.logger.Info("Solo registration created",
		zap.String("event_id", eventID),
		zap.String("user_id", userID))
	return reg, nil
}

// RegisterTeam registers a team for a team event and locks the team.
func (s *RegistrationService) RegisterTeam(ctx context.Context, eventID, teamID, requesterID string) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		reg, err = s.registerTeamTx(ctx, tx, eventID, teamID, requesterID)
		return err
	})
	if err != nil {
		return nil, registrationErr(err, "register for event")
	}

	s.logger.Info("Team registration created",
		zap.String("event_id", eventID),
		zap.String("team_id", teamID))
	return reg, nil
}

// registerTeamTx runs inside the caller's transaction. The team row lock is
// taken before anything is read, so membership cannot change between the
// size check and the binding.
func (s *RegistrationService) registerTeamTx(ctx context.Context, tx *repository.Repositories, eventID, teamID, requesterID string) (*domain.Registration, error) {
	team, err := tx.Teams.LockByID(ctx, teamID)
	if err != nil {
		return nil, notFound(err, ReasonTeamNotFound, "Team not found", "lock team")
	}
	if team.LeaderID != requesterID {
		return nil, apperrors.NewForbiddenError(ReasonNotTeamLeader, "Only the team leader can register the team")
	}
	if team.Locked() {
		return nil, apperrors.NewConflictError(ReasonTeamLocked, "Team is already registered for an event")
	}

	ev, err := s.openEvent(ctx, tx, eventID, domain.ModeTeam)
	if err != nil {
		return nil, err
	}

	members, err := tx.Teams.ListMembers(ctx, []string{teamID})
	if err != nil {
		return nil, internalErr("list team members", err)
	}
	if n := len(members); n < ev.MinTeamSize || n > ev.MaxTeamSize {
		return nil, apperrors.NewValidationError(ReasonTeamSizeOutOfRange, "Team size is outside the event limits", map[string]interface{}{
			"min_team_size": ev.MinTeamSize,
			"max_team_size": ev.MaxTeamSize,
			"team_size":     n,
		})
	}
	for _, m := range members {
		_, err := tx.Teams.FindByEventMember(ctx, eventID, m.UserID)
		if err == nil {
			return nil, apperrors.NewConflictError(ReasonMemberAlreadyRegistered, "A member is already registered for this event with another team").
				WithDetail("user_id", m.UserID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, internalErr("check member registrations", err)
		}
	}

	if err := s.checkCapacity(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err := tx.Teams.BindEvent(ctx, teamID, eventID); err != nil {
		return nil, err
	}
	reg := &domain.Registration{EventID: eventID, TeamID: &teamID}
	if err := tx.Registrations.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *RegistrationService) openEvent(ctx context.Context, tx *repository.Repositories, eventID string, mode domain.ParticipationMode) (*domain.Event, error) {
	ev, err := tx.Events.LockByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, ReasonEventNotFound, "Event not found", "load event")
	}
	if ev.Mode != mode {
		return nil, apperrors.NewValidationError(ReasonWrongMode, "Event does not accept this kind of registration", map[string]interface{}{
			"mode": ev.Mode,
		})
	}
	if !ev.RegistrationOpen(s.now()) {
		return nil, apperrors.NewConflictError(ReasonRegistrationClosed, "Registration window is closed")
	}
	return ev, nil
}

func (s *RegistrationService) checkCapacity(ctx context.Context, tx *repository.Repositories, ev *domain.Event) error {
	n, err := tx.Registrations.CountForEvent(ctx, ev.ID)
	if err != nil {
		return internalErr("count registrations", err)
	}
	if n >= ev.Capacity {
		return apperrors.NewConflictError(ReasonEventFull, "Event has reached capacity")
	}
	return nil
}

func registrationErr(err error, op string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrStateChanged) {
		return apperrors.NewConflictError(ReasonTeamLocked, "Team is already registered for an event")
	}
	if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonAlreadyRegistered {
		return apperrors.NewConflictError(ReasonAlreadyRegistered, "Already registered for this event")
	}
	return internalErr(op, err)
}
