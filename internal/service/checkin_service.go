package service

import (
	"context"
	"errors"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	apperrors "fest-backend/pkg/errors"
	"fest-backend/pkg/metrics"

	"go.uber.org/zap"
)

// CheckInService admits registered entrants to event rounds. Scanning is a
// read-only preview; check-in commits attendance for a group at once.
type CheckInService struct {
	store    repository.Store
	payments PaymentLookup
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewCheckInService(store repository.Store, payments PaymentLookup, m *metrics.Metrics, logger *zap.Logger) *CheckInService {
	return &CheckInService{
		store:    store,
		payments: payments,
		metrics:  m,
		logger:   logger,
	}
}

// ParticipantPreview is one person shown to the operator after a scan.
type ParticipantPreview struct {
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

// ScanPreview describes the scanned entrant and everyone who would be checked in with them.
type ScanPreview struct {
	EventID   string                   `json:"event_id"`
	EventName string                   `json:"event_name"`
	Mode      domain.ParticipationMode `json:"mode"`
	RoundID   string                   `json:"round_id"`
	RoundNo   int                      `json:"round_no"`
	Scanned   string                   `json:"scanned_user_id"`
	Team      *domain.Team             `json:"team,omitempty"`
	Members   []*ParticipantPreview    `json:"members"`
}

// CheckInResult lists the attendance rows written by one check-in call.
type CheckInResult struct {
	RoundID   string            `json:"round_id"`
	TeamID    *string           `json:"team_id,omitempty"`
	CheckedIn []*domain.CheckIn `json:"checked_in"`
}

// ScanForRound validates that userID may enter the round and previews the group. It never writes.
func (s *CheckInService) ScanForRound(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userID string) (*ScanPreview, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	repos := s.store.Repos()

	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ReasonUserNotFound, "User not found", "load user")
	}
	ev, round, err := loadRound(ctx, repos, eventID, roundNo)
	if err != nil {
		return nil, err
	}
	team, err := s.checkEligible(ctx, repos, ev, round, user)
	if err != nil {
		return nil, err
	}

	preview := &ScanPreview{
		EventID:   ev.ID,
		EventName: ev.Name,
		Mode:      ev.Mode,
		RoundID:   round.ID,
		RoundNo:   round.Number,
		Scanned:   user.ID,
		Team:      team,
	}

	var people []*ParticipantPreview
	if team != nil {
		members, err := repos.Teams.ListMembers(ctx, []string{team.ID})
		if err != nil {
			return nil, internalErr("list team members", err)
		}
		for _, m := range members {
			people = append(people, &ParticipantPreview{UserID: m.UserID, Name: m.Name, Email: m.Email})
		}
	} else {
		people = []*ParticipantPreview{{UserID: user.ID, Name: user.Name, Email: user.Email}}
	}

	checkIns, err := repos.CheckIns.ListForRound(ctx, round.ID, Pluck(people, func(p *ParticipantPreview) string { return p.UserID }))
	if err != nil {
		return nil, internalErr("list check-ins", err)
	}
	byUser := make(map[string]*domain.CheckIn, len(checkIns))
	for _, c := range checkIns {
		byUser[c.UserID] = c
	}
	for _, p := range people {
		if c, ok := byUser[p.UserID]; ok {
			at := c.CheckedInAt
			p.CheckedIn, p.CheckedInAt = true, &at
		}
	}
	preview.Members = people
	return preview, nil
}

// CheckInRoundParticipants admits every user in userIDs or none of them.
// A repeated check-in surfaces as already_checked_in naming the user.
func (s *CheckInService) CheckInRoundParticipants(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userIDs []string, teamID *string) (*CheckInResult, error) {
	result, err := s.checkIn(ctx, actor, eventID, roundNo, userIDs, teamID)
	if err != nil {
		s.metrics.CheckIn(outcomeOf(err), len(userIDs))
		return nil, err
	}
	s.metrics.CheckIn("success", len(result.CheckedIn))
	s.logger.Info("Round check-in committed",
		zap.String("event_id", eventID),
		zap.Int("round_no", roundNo),
		zap.Int("participants", len(result.CheckedIn)),
		zap.String("checked_in_by", actor.UserID))
	return result, nil
}

func (s *CheckInService) checkIn(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userIDs []string, teamID *string) (*CheckInResult, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	repos := s.store.Repos()

	ev, round, err := loadRound(ctx, repos, eventID, roundNo)
	if err != nil {
		return nil, err
	}
	if ev.Mode == domain.ModeSolo && teamID != nil {
		return nil, apperrors.NewValidationError(ReasonWrongMode, "Solo events do not take a team id", nil)
	}

	users, err := repos.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, internalErr("load users", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var groupTeam *string
	for _, id := range userIDs {
		u, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(ReasonUserNotFound, "User not found").WithDetail("user_id", id)
		}
		team, err := s.checkEligible(ctx, repos, ev, round, u)
		if err != nil {
			return nil, withUser(err, id)
		}
		if team == nil {
			continue
		}
		switch {
		case teamID != nil && team.ID != *teamID:
			return nil, apperrors.NewForbiddenError(ReasonNotRegistered, "User is not registered with this team").
				WithDetail("user_id", id)
		case groupTeam != nil && *groupTeam != team.ID:
			return nil, apperrors.NewValidationError(ReasonTeamMismatch, "All participants must belong to the same team",
				map[string]interface{}{"user_id": id})
		}
		groupTeam = &team.ID
	}

	result := &CheckInResult{RoundID: round.ID, TeamID: groupTeam, CheckedIn: make([]*domain.CheckIn, 0, len(userIDs))}
	err = s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		for _, id := range userIDs {
			c := &domain.CheckIn{
				RoundID:     round.ID,
				UserID:      id,
				TeamID:      groupTeam,
				CheckedInBy: actor.UserID,
			}
			if err := tx.CheckIns.Create(ctx, c); err != nil {
				return err
			}
			result.CheckedIn = append(result.CheckedIn, c)
		}
		return nil
	})
	if err != nil {
		if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonAlreadyCheckedIn {
			return nil, apperrors.NewConflictError(ReasonAlreadyCheckedIn, "Participant is already checked in to this round").
				WithDetail("user_id", ce.Key)
		}
		return nil, internalErr("record check-in", err)
	}
	return result, nil
}

// checkEligible returns the entrant's registered team for team events, or nil for solo events.
func (s *CheckInService) checkEligible(ctx context.Context, repos *repository.Repositories, ev *domain.Event, round *domain.Round, user *domain.User) (*domain.Team, error) {
	if ev.Mode == domain.ModeTeam {
		team, err := repos.Teams.FindByEventMember(ctx, ev.ID, user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notRegistered()
			}
			return nil, internalErr("find team", err)
		}
		ok, err := repos.Registrations.ExistsForTeam(ctx, ev.ID, team.ID)
		if err != nil {
			return nil, internalErr("check registration", err)
		}
		if !ok {
			return nil, notRegistered()
		}
		if err := s.checkQualified(ctx, repos, ev, round, func(prev string) (*domain.RoundResult, error) {
			return repos.Results.GetForTeam(ctx, prev, team.ID)
		}); err != nil {
			return nil, err
		}
		return team, nil
	}

	ok, err := repos.Registrations.ExistsForUser(ctx, ev.ID, user.ID)
	if err != nil {
		return nil, internalErr("check registration", err)
	}
	if !ok {
		return nil, notRegistered()
	}
	status, err := s.payments.PaymentStatus(ctx, user)
	if err != nil {
		return nil, internalErr("look up payment status", err)
	}
	if status == domain.PaymentUnpaid {
		return nil, apperrors.NewPaymentRequiredError(ReasonPaymentPending, "Participant has not completed payment")
	}
	return nil, s.checkQualified(ctx, repos, ev, round, func(prev string) (*domain.RoundResult, error) {
		return repos.Results.GetForUser(ctx, prev, user.ID)
	})
}

// checkQualified requires a QUALIFIED result in the previous round for rounds after the first.
func (s *CheckInService) checkQualified(ctx context.Context, repos *repository.Repositories, ev *domain.Event, round *domain.Round, result func(prevRoundID string) (*domain.RoundResult, error)) error {
	if round.Number <= 1 {
		return nil
	}
	prev, err := repos.Events.GetRound(ctx, ev.ID, round.Number-1)
	if err != nil {
		return notFound(err, ReasonRoundNotFound, "Previous round not found", "load previous round")
	}
	res, err := result(prev.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notQualified()
		}
		return internalErr("load previous result", err)
	}
	if res.Status != domain.ResultQualified {
		return notQualified()
	}
	return nil
}

func loadRound(ctx context.Context, repos *repository.Repositories, eventID string, roundNo int) (*domain.Event, *domain.Round, error) {
	ev, err := repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, notFound(err, ReasonEventNotFound, "Event not found", "load event")
	}
	round, err := repos.Events.GetRound(ctx, eventID, roundNo)
	if err != nil {
		return nil, nil, notFound(err, ReasonRoundNotFound, "Round not found", "load round")
	}
	return ev, round, nil
}

func notRegistered() error {
	return apperrors.NewForbiddenError(ReasonNotRegistered, "Participant is not registered for this event")
}

func notQualified() error {
	return apperrors.NewForbiddenError(ReasonNotQualified, "Participant did not qualify in the previous round")
}

// withUser tags a business rejection with the user it concerns.
func withUser(err error, userID string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeInternal {
		return appErr.WithDetail("user_id", userID)
	}
	return err
}

func outcomeOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Reason != "" {
		return appErr.Reason
	}
	return "internal_error"
}
