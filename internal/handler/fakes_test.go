package handler

import (
	"context"

	"fest-backend/internal/domain"
	"fest-backend/internal/service"
)

type fakeTeams struct {
	CreateTeamFunc          func(ctx context.Context, leaderID, name string, memberEmails []string) (*service.CreateTeamResult, error)
	GetTeamFunc             func(ctx context.Context, teamID string, caller domain.Identity) (*domain.TeamDetail, error)
	UpdateTeamFunc          func(ctx context.Context, teamID, requesterID string, name, eventID *string) (*domain.TeamDetail, error)
	DeleteTeamFunc          func(ctx context.Context, teamID, requesterID string) error
	InviteTeamMemberFunc    func(ctx context.Context, teamID, requesterID, email string) (*domain.Invitation, error)
	DeleteInvitationFunc    func(ctx context.Context, teamID, invitationID, requesterID string) error
	RemoveMemberFunc        func(ctx context.Context, teamID, requesterID, memberID string) error
	ListMyInvitationsFunc   func(ctx context.Context, userID string) ([]*domain.Invitation, error)
	RespondToInvitationFunc func(ctx context.Context, invitationID, userID string, accept bool) (*domain.Invitation, error)
}

func (f *fakeTeams) CreateTeam(ctx context.Context, leaderID, name string, memberEmails []string) (*service.CreateTeamResult, error) {
	return f.CreateTeamFunc(ctx, leaderID, name, memberEmails)
}

func (f *fakeTeams) GetTeam(ctx context.Context, teamID string, caller domain.Identity) (*domain.TeamDetail, error) {
	return f.GetTeamFunc(ctx, teamID, caller)
}

func (f *fakeTeams) UpdateTeam(ctx context.Context, teamID, requesterID string, name, eventID *string) (*domain.TeamDetail, error) {
	return f.UpdateTeamFunc(ctx, teamID, requesterID, name, eventID)
}

func (f *fakeTeams) DeleteTeam(ctx context.Context, teamID, requesterID string) error {
	return f.DeleteTeamFunc(ctx, teamID, requesterID)
}

func (f *fakeTeams) InviteTeamMember(ctx context.Context, teamID, requesterID, email string) (*domain.Invitation, error) {
	return f.InviteTeamMemberFunc(ctx, teamID, requesterID, email)
}

func (f *fakeTeams) DeleteInvitation(ctx context.Context, teamID, invitationID, requesterID string) error {
	return f.DeleteInvitationFunc(ctx, teamID, invitationID, requesterID)
}

func (f *fakeTeams) RemoveMember(ctx context.Context, teamID, requesterID, memberID string) error {
	return f.RemoveMemberFunc(ctx, teamID, requesterID, memberID)
}

func (f *fakeTeams) ListMyInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return f.ListMyInvitationsFunc(ctx, userID)
}

func (f *fakeTeams) RespondToInvitation(ctx context.Context, invitationID, userID string, accept bool) (*domain.Invitation, error) {
	return f.RespondToInvitationFunc(ctx, invitationID, userID, accept)
}

type fakeEvents struct {
	CreateEventFunc       func(ctx context.Context, actor domain.Identity, agg *domain.EventAggregate) (*domain.EventAggregate, error)
	ListEventsVerboseFunc func(ctx context.Context) ([]*domain.EventAggregate, error)
	GetEventVerboseFunc   func(ctx context.Context, eventID string) (*domain.EventAggregate, error)
	RegisterSoloFunc      func(ctx context.Context, eventID, userID string) (*domain.Registration, error)
	RegisterTeamFunc      func(ctx context.Context, eventID, teamID, requesterID string) (*domain.Registration, error)
}

func (f *fakeEvents) CreateEvent(ctx context.Context, actor domain.Identity, agg *domain.EventAggregate) (*domain.EventAggregate, error) {
	return f.CreateEventFunc(ctx, actor, agg)
}

func (f *fakeEvents) ListEventsVerbose(ctx context.Context) ([]*domain.EventAggregate, error) {
	return f.ListEventsVerboseFunc(ctx)
}

func (f *fakeEvents) GetEventVerbose(ctx context.Context, eventID string) (*domain.EventAggregate, error) {
	return f.GetEventVerboseFunc(ctx, eventID)
}

func (f *fakeEvents) RegisterSolo(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	return f.RegisterSoloFunc(ctx, eventID, userID)
}

func (f *fakeEvents) RegisterTeam(ctx context.Context, eventID, teamID, requesterID string) (*domain.Registration, error) {
	return f.RegisterTeamFunc(ctx, eventID, teamID, requesterID)
}

type fakeRounds struct {
	ScanForRoundFunc             func(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userID string) (*service.ScanPreview, error)
	CheckInRoundParticipantsFunc func(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userIDs []string, teamID *string) (*service.CheckInResult, error)
	AssignRoundResultsFunc       func(ctx context.Context, actor domain.Identity, eventID string, roundNo int, items []*domain.RoundResult) (*service.BatchOutcome[*domain.RoundResult], error)
	AssignEventPrizesFunc        func(ctx context.Context, actor domain.Identity, eventID string, items []*domain.PrizeAward) (*service.BatchOutcome[*domain.PrizeAward], error)
	GetRoundResultsFunc          func(ctx context.Context, eventID string, roundNo, page, pageSize int) (*service.ResultsPage, error)
}

func (f *fakeRounds) ScanForRound(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userID string) (*service.ScanPreview, error) {
	return f.ScanForRoundFunc(ctx, actor, eventID, roundNo, userID)
}

func (f *fakeRounds) CheckInRoundParticipants(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userIDs []string, teamID *string) (*service.CheckInResult, error) {
	return f.CheckInRoundParticipantsFunc(ctx, actor, eventID, roundNo, userIDs, teamID)
}

func (f *fakeRounds) AssignRoundResults(ctx context.Context, actor domain.Identity, eventID string, roundNo int, items []*domain.RoundResult) (*service.BatchOutcome[*domain.RoundResult], error) {
	return f.AssignRoundResultsFunc(ctx, actor, eventID, roundNo, items)
}

func (f *fakeRounds) AssignEventPrizes(ctx context.Context, actor domain.Identity, eventID string, items []*domain.PrizeAward) (*service.BatchOutcome[*domain.PrizeAward], error) {
	return f.AssignEventPrizesFunc(ctx, actor, eventID, items)
}

func (f *fakeRounds) GetRoundResults(ctx context.Context, eventID string, roundNo, page, pageSize int) (*service.ResultsPage, error) {
	return f.GetRoundResultsFunc(ctx, eventID, roundNo, page, pageSize)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Health(context.Context) error {
	return p.err
}
