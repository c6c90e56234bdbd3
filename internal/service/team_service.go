package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	apperrors "fest-backend/pkg/errors"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"
)

// TeamService runs team formation: creation, invitations and membership.
// Only the leader mutates a team, and a locked team keeps its composition.
type TeamService struct {
	store         repository.Store
	payments      PaymentLookup
	profiles      ProfileLookup
	registrations *RegistrationService
	logger        *zap.Logger
	now           func() time.Time
}

func NewTeamService(store repository.Store, payments PaymentLookup, profiles ProfileLookup, registrations *RegistrationService, logger *zap.Logger) *TeamService {
	return &TeamService{
		store:         store,
		payments:      payments,
		profiles:      profiles,
		registrations: registrations,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateTeamResult is returned after a team and its invitations are persisted.
type CreateTeamResult struct {
	TeamID          string               `json:"team_id"`
	Name            string               `json:"name"`
	InvitationsSent int                  `json:"invitations_sent"`
	Invitations     []*domain.Invitation `json:"invitations"`
}

// CreateTeam validates the leader and every invitee before writing anything.
// Invitee failures are bucketed and the first non-empty bucket wins, in the
// order unknown email, incomplete profile, payment pending, other institution.
func (s *TeamService) CreateTeam(ctx context.Context, leaderID, name string, memberEmails []string) (*CreateTeamResult, error) {
	repos := s.store.Repos()

	leader, err := repos.Users.GetByID(ctx, leaderID)
	if err != nil {
		return nil, notFound(err, ReasonUserNotFound, "User not found", "load leader")
	}
	if err := s.checkLeaderStanding(ctx, leader); err != nil {
		return nil, err
	}

	taken, err := repos.Teams.NameTaken(ctx, name)
	if err != nil {
		return nil, internalErr("check team name", err)
	}
	if taken {
		return nil, duplicateName()
	}

	invitees, err := s.screenInvitees(ctx, leader, memberEmails)
	if err != nil {
		return nil, err
	}
	// The leader passes every bucket, so a self-invite is reported after them.
	for _, u := range invitees {
		if u.ID == leader.ID {
			return nil, apperrors.NewValidationError(ReasonCannotInviteSelf, "Team leader cannot invite themselves", nil)
		}
	}

	team := &domain.Team{Name: name, LeaderID: leader.ID}
	invitations := make([]*domain.Invitation, 0, len(invitees))
	err = s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Teams.Create(ctx, team); err != nil {
			return err
		}
		if err := tx.Teams.AddMember(ctx, team.ID, leader.ID); err != nil {
			return err
		}
		for _, u := range invitees {
			inv := &domain.Invitation{
				TeamID:      team.ID,
				TeamName:    team.Name,
				InviteeID:   u.ID,
				InviteeMail: u.Email,
				InviterID:   leader.ID,
			}
			if err := tx.Invitations.Create(ctx, inv); err != nil {
				return err
			}
			invitations = append(invitations, inv)
		}
		return nil
	})
	if err != nil {
		if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonDuplicateTeamName {
			return nil, duplicateName()
		}
		return nil, internalErr("create team", err)
	}

	s.logger.Info("Team created",
		zap.String("team_id", team.ID),
		zap.String("leader_id", leader.ID),
		zap.Int("invitations", len(invitations)))

	return &CreateTeamResult{
		TeamID:          team.ID,
		Name:            team.Name,
		InvitationsSent: len(invitations),
		Invitations:     invitations,
	}, nil
}

func (s *TeamService) checkLeaderStanding(ctx context.Context, leader *domain.User) error {
	status, err := s.payments.PaymentStatus(ctx, leader)
	if err != nil {
		return internalErr("look up payment status", err)
	}
	if !status.Settled() {
		return apperrors.NewPaymentRequiredError(ReasonPaymentPending, "Complete your payment before creating a team")
	}
	complete, err := s.profiles.ProfileCompleted(ctx, leader)
	if err != nil {
		return internalErr("look up profile", err)
	}
	if !complete {
		return apperrors.NewValidationError(ReasonIncompleteProfile, "Complete your profile before creating a team", nil)
	}
	return nil
}

// screenInvitees resolves every email and returns the matching users, or the
// rejection for the highest-precedence non-empty failure bucket. Malformed
// addresses are never looked up and count as unknown.
func (s *TeamService) screenInvitees(ctx context.Context, leader *domain.User, emails []string) ([]*domain.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lookup := make([]string, 0, len(emails))
	for _, email := range emails {
		if checkmail.ValidateFormat(email) == nil {
			lookup = append(lookup, email)
		}
	}
	users, err := s.store.Repos().Users.GetByEmails(ctx, lookup)
	if err != nil {
		return nil, internalErr("look up invitees", err)
	}
	byEmail := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byEmail[strings.ToLower(u.Email)] = u
	}

	var invalid, incomplete, unpaid, foreign []string
	found := make([]*domain.User, 0, len(emails))
	for _, email := range emails {
		u, ok := byEmail[strings.ToLower(email)]
		if !ok {
			invalid = append(invalid, email)
			continue
		}
		failure, err := s.inviteeFailure(ctx, leader, u)
		if err != nil {
			return nil, err
		}
		switch failure {
		case ReasonIncompleteProfile:
			incomplete = append(incomplete, email)
		case ReasonPaymentPending:
			unpaid = append(unpaid, email)
		case ReasonDifferentInstitution:
			foreign = append(foreign, email)
		default:
			found = append(found, u)
		}
	}

	switch {
	case len(invalid) > 0:
		return nil, apperrors.NewValidationError(ReasonInvalidMemberEmails, "Some emails do not belong to registered users",
			map[string]interface{}{DetailInvalidEmails: invalid})
	case len(incomplete) > 0:
		return nil, apperrors.NewValidationError(ReasonIncompleteProfile, "Some members have not completed their profile",
			map[string]interface{}{DetailIncompleteProfileEmail: incomplete})
	case len(unpaid) > 0:
		return nil, apperrors.NewPaymentRequiredError(ReasonPaymentPending, "Some members have not completed payment").
			WithDetail(DetailPaymentPendingEmails, unpaid)
	case len(foreign) > 0:
		return nil, apperrors.NewValidationError(ReasonDifferentInstitution, "All members must belong to the leader's institution",
			map[string]interface{}{DetailDifferentInstitution: foreign})
	}
	return found, nil
}

// inviteeFailure returns the first eligibility reason u fails, or "".
func (s *TeamService) inviteeFailure(ctx context.Context, leader, u *domain.User) (string, error) {
	complete, err := s.profiles.ProfileCompleted(ctx, u)
	if err != nil {
		return "", internalErr("look up profile", err)
	}
	if !complete {
		return ReasonIncompleteProfile, nil
	}
	status, err := s.payments.PaymentStatus(ctx, u)
	if err != nil {
		return "", internalErr("look up payment status", err)
	}
	if !status.Settled() {
		return ReasonPaymentPending, nil
	}
	if u.InstitutionID != leader.InstitutionID {
		return ReasonDifferentInstitution, nil
	}
	return "", nil
}

// InviteTeamMember sends one more invitation from the leader of an unlocked team.
func (s *TeamService) InviteTeamMember(ctx context.Context, teamID, requesterID, email string) (*domain.Invitation, error) {
	repos := s.store.Repos()

	team, err := s.leaderTeam(ctx, teamID, requesterID)
	if err != nil {
		return nil, err
	}
	if team.Locked() {
		return nil, teamLocked()
	}

	leader, err := repos.Users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, notFound(err, ReasonUserNotFound, "User not found", "load leader")
	}
	if strings.EqualFold(email, leader.Email) {
		return nil, apperrors.NewValidationError(ReasonCannotInviteSelf, "Team leader cannot invite themselves", nil)
	}

	matches, err := repos.Users.GetByEmails(ctx, []string{email})
	if err != nil {
		return nil, internalErr("look up invitee", err)
	}
	if len(matches) == 0 {
		return nil, apperrors.NewNotFoundError(ReasonUserNotFound, "No registered user with that email")
	}
	invitee := matches[0]

	member, err := repos.Teams.IsMember(ctx, teamID, invitee.ID)
	if err != nil {
		return nil, internalErr("check membership", err)
	}
	if member {
		return nil, apperrors.NewConflictError(ReasonAlreadyMember, "User is already a member of this team")
	}
	pending, err := repos.Invitations.HasPending(ctx, teamID, invitee.ID)
	if err != nil {
		return nil, internalErr("check pending invitations", err)
	}
	if pending {
		return nil, duplicateInvitation()
	}

	failure, err := s.inviteeFailure(ctx, leader, invitee)
	if err != nil {
		return nil, err
	}
	switch failure {
	case ReasonIncompleteProfile:
		return nil, apperrors.NewValidationError(ReasonIncompleteProfile, "Invitee has not completed their profile",
			map[string]interface{}{DetailIncompleteProfileEmail: []string{email}})
	case ReasonPaymentPending:
		return nil, apperrors.NewPaymentRequiredError(ReasonPaymentPending, "Invitee has not completed payment").
			WithDetail(DetailPaymentPendingEmails, []string{email})
	case ReasonDifferentInstitution:
		return nil, apperrors.NewValidationError(ReasonDifferentInstitution, "Invitee belongs to a different institution",
			map[string]interface{}{DetailDifferentInstitution: []string{email}})
	}

	inv := &domain.Invitation{
		TeamID:      teamID,
		TeamName:    team.Name,
		InviteeID:   invitee.ID,
		InviteeMail: invitee.Email,
		InviterID:   requesterID,
	}
	if err := repos.Invitations.Create(ctx, inv); err != nil {
		if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonDuplicateInvite {
			return nil, duplicateInvitation()
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(ReasonTeamNotFound, "Team not found")
		}
		return nil, internalErr("create invitation", err)
	}

	s.logger.Info("Invitation sent",
		zap.String("team_id", teamID),
		zap.String("invitation_id", inv.ID))
	return inv, nil
}

// RespondToInvitation accepts or declines a pending invitation addressed to userID.
func (s *TeamService) RespondToInvitation(ctx context.Context, invitationID, userID string, accept bool) (*domain.Invitation, error) {
	inv, err := s.store.Repos().Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, notFound(err, ReasonInvitationNotFound, "Invitation not found", "load invitation")
	}
	if inv.InviteeID != userID {
		return nil, apperrors.NewForbiddenError(ReasonNotInvitee, "This invitation is addressed to someone else")
	}
	if inv.Status != domain.InvitationPending {
		return nil, invitationResolved()
	}

	at := s.now().UTC()
	status := domain.InvitationDeclined
	if accept {
		status = domain.InvitationAccepted
	}

	err = s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		if accept {
			team, err := tx.Teams.LockByID(ctx, inv.TeamID)
			if err != nil {
				return notFound(err, ReasonTeamNotFound, "Team not found", "lock team")
			}
			if team.Locked() {
				return teamLocked()
			}
		}
		if err := tx.Invitations.Resolve(ctx, inv.ID, status, at); err != nil {
			return err
		}
		if !accept {
			return nil
		}
		if err := tx.Teams.AddMember(ctx, inv.TeamID, userID); err != nil {
			if errors.Is(err, repository.ErrStateChanged) {
				return teamLocked()
			}
			return err
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrStateChanged):
			return nil, invitationResolved()
		}
		if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonAlreadyMember {
			return nil, apperrors.NewConflictError(ReasonAlreadyMember, "Already a member of this team")
		}
		return nil, internalErr("respond to invitation", err)
	}

	inv.Status = status
	inv.RespondedAt = &at
	s.logger.Info("Invitation resolved",
		zap.String("invitation_id", inv.ID),
		zap.String("status", string(status)))
	return inv, nil
}

// RemoveMember drops memberID from an unlocked team. The leader can never be removed.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, requesterID, memberID string) error {
	err := s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		team, err := tx.Teams.LockByID(ctx, teamID)
		if err != nil {
			return notFound(err, ReasonTeamNotFound, "Team not found", "lock team")
		}
		if memberID == team.LeaderID {
			return apperrors.NewValidationError(ReasonCannotRemoveLeader, "The team leader cannot be removed", nil)
		}
		if team.LeaderID != requesterID {
			return notLeader()
		}
		if team.Locked() {
			return teamLocked()
		}
		return tx.Teams.RemoveMember(ctx, teamID, memberID)
	})
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			return appErr
		case errors.Is(err, repository.ErrStateChanged):
			return teamLocked()
		}
		return notFound(err, ReasonMemberNotFound, "User is not a member of this team", "remove member")
	}

	s.logger.Info("Team member removed",
		zap.String("team_id", teamID),
		zap.String("user_id", memberID))
	return nil
}

// UpdateTeam renames the team and/or registers it for an event, which locks
// it. Both changes commit together or not at all.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID, requesterID string, name, eventID *string) (*domain.TeamDetail, error) {
	err := s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		team, err := tx.Teams.LockByID(ctx, teamID)
		if err != nil {
			return notFound(err, ReasonTeamNotFound, "Team not found", "lock team")
		}
		if team.LeaderID != requesterID {
			return notLeader()
		}
		if team.Locked() {
			return teamLocked()
		}

		if name != nil && *name != team.Name {
			taken, err := tx.Teams.NameTaken(ctx, *name)
			if err != nil {
				return internalErr("check team name", err)
			}
			if taken {
				return duplicateName()
			}
			if err := tx.Teams.Rename(ctx, teamID, *name); err != nil {
				return err
			}
		}

		if eventID != nil {
			_, err := s.registrations.registerTeamTx(ctx, tx, *eventID, teamID, requesterID)
			return err
		}
		return nil
	})
	if err != nil {
		if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonDuplicateTeamName {
			return nil, duplicateName()
		}
		return nil, registrationErr(err, "update team")
	}

	fields := []zap.Field{zap.String("team_id", teamID)}
	if eventID != nil {
		fields = append(fields, zap.String("event_id", *eventID))
	}
	s.logger.Info("Team updated", fields...)
	return s.loadDetail(ctx, teamID)
}

// DeleteTeam removes an unlocked team; memberships and invitations cascade.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID, requesterID string) error {
	team, err := s.leaderTeam(ctx, teamID, requesterID)
	if err != nil {
		return err
	}
	if team.Locked() {
		return teamLocked()
	}
	if err := s.store.Repos().Teams.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return teamLocked()
		}
		return internalErr("delete team", err)
	}
	s.logger.Info("Team deleted", zap.String("team_id", teamID))
	return nil
}

// DeleteInvitation withdraws a pending invitation of the leader's team.
func (s *TeamService) DeleteInvitation(ctx context.Context, teamID, invitationID, requesterID string) error {
	if _, err := s.leaderTeam(ctx, teamID, requesterID); err != nil {
		return err
	}
	repos := s.store.Repos()

	inv, err := repos.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return notFound(err, ReasonInvitationNotFound, "Invitation not found", "load invitation")
	}
	if inv.TeamID != teamID {
		return apperrors.NewNotFoundError(ReasonInvitationNotFound, "Invitation not found")
	}
	if inv.Status != domain.InvitationPending {
		return invitationResolved()
	}
	if err := repos.Invitations.DeletePending(ctx, invitationID); err != nil {
		if errors.Is(err, repository.ErrStateChanged) {
			return invitationResolved()
		}
		return internalErr("delete invitation", err)
	}
	return nil
}

// GetTeam returns the team with members and pending invitations. Members and
// event managers may read it.
func (s *TeamService) GetTeam(ctx context.Context, teamID string, caller domain.Identity) (*domain.TeamDetail, error) {
	if !caller.Role.CanManageEvents() {
		if _, err := s.store.Repos().Teams.GetByID(ctx, teamID); err != nil {
			return nil, notFound(err, ReasonTeamNotFound, "Team not found", "load team")
		}
		member, err := s.store.Repos().Teams.IsMember(ctx, teamID, caller.UserID)
		if err != nil {
			return nil, internalErr("check membership", err)
		}
		if !member {
			return nil, apperrors.NewForbiddenError(ReasonNotTeamMember, "Only team members can view this team")
		}
	}
	return s.loadDetail(ctx, teamID)
}

// ListMyInvitations lists pending invitations addressed to userID.
func (s *TeamService) ListMyInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	invs, err := s.store.Repos().Invitations.ListPendingForInvitee(ctx, userID)
	if err != nil {
		return nil, internalErr("list invitations", err)
	}
	return orEmpty(invs), nil
}

func (s *TeamService) loadDetail(ctx context.Context, teamID string) (*domain.TeamDetail, error) {
	repos := s.store.Repos()
	team, err := repos.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, notFound(err, ReasonTeamNotFound, "Team not found", "load team")
	}
	members, err := repos.Teams.ListMembers(ctx, []string{teamID})
	if err != nil {
		return nil, internalErr("list team members", err)
	}
	pending, err := repos.Invitations.ListPendingForTeam(ctx, teamID)
	if err != nil {
		return nil, internalErr("list team invitations", err)
	}
	return &domain.TeamDetail{
		Team:               *team,
		Members:            orEmpty(members),
		PendingInvitations: orEmpty(pending),
	}, nil
}

// leaderTeam loads the team and requires requesterID to lead it.
func (s *TeamService) leaderTeam(ctx context.Context, teamID, requesterID string) (*domain.Team, error) {
	team, err := s.store.Repos().Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, notFound(err, ReasonTeamNotFound, "Team not found", "load team")
	}
	if team.LeaderID != requesterID {
		return nil, notLeader()
	}
	return team, nil
}

func duplicateName() error {
	return apperrors.NewConflictError(ReasonDuplicateTeamName, "Team name is already taken")
}

func duplicateInvitation() error {
	return apperrors.NewConflictError(ReasonDuplicateInvitation, "A pending invitation already exists for this user")
}

func invitationResolved() error {
	return apperrors.NewConflictError(ReasonInvitationResolved, "Invitation has already been answered")
}

func teamLocked() error {
	return apperrors.NewConflictError(ReasonTeamLocked, "Team is registered for an event and can no longer change")
}

func notLeader() error {
	return apperrors.NewForbiddenError(ReasonNotTeamLeader, "Only the team leader can do this")
}
