// Package handler adapts HTTP requests to the fest services. Handlers parse
// input with the request package, call one service method and render the
// result through the response envelope.
package handler

import (
	"context"
	"net/http"

	"fest-backend/internal/domain"
	"fest-backend/internal/middleware"
	"fest-backend/internal/response"
	"fest-backend/internal/service"
	"fest-backend/pkg/errors"
	"fest-backend/pkg/logger"
)

// TeamAPI is the slice of the team service exposed over HTTP.
type TeamAPI interface {
	CreateTeam(ctx context.Context, leaderID, name string, memberEmails []string) (*service.CreateTeamResult, error)
	GetTeam(ctx context.Context, teamID string, caller domain.Identity) (*domain.TeamDetail, error)
	UpdateTeam(ctx context.Context, teamID, requesterID string, name, eventID *string) (*domain.TeamDetail, error)
	DeleteTeam(ctx context.Context, teamID, requesterID string) error
	InviteTeamMember(ctx context.Context, teamID, requesterID, email string) (*domain.Invitation, error)
	DeleteInvitation(ctx context.Context, teamID, invitationID, requesterID string) error
	RemoveMember(ctx context.Context, teamID, requesterID, memberID string) error
	ListMyInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error)
	RespondToInvitation(ctx context.Context, invitationID, userID string, accept bool) (*domain.Invitation, error)
}

type EventAPI interface {
	CreateEvent(ctx context.Context, actor domain.Identity, agg *domain.EventAggregate) (*domain.EventAggregate, error)
	ListEventsVerbose(ctx context.Context) ([]*domain.EventAggregate, error)
	GetEventVerbose(ctx context.Context, eventID string) (*domain.EventAggregate, error)
}

type RegistrationAPI interface {
	RegisterSolo(ctx context.Context, eventID, userID string) (*domain.Registration, error)
	RegisterTeam(ctx context.Context, eventID, teamID, requesterID string) (*domain.Registration, error)
}

type CheckInAPI interface {
	ScanForRound(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userID string) (*service.ScanPreview, error)
	CheckInRoundParticipants(ctx context.Context, actor domain.Identity, eventID string, roundNo int, userIDs []string, teamID *string) (*service.CheckInResult, error)
}

type ResultAPI interface {
	AssignRoundResults(ctx context.Context, actor domain.Identity, eventID string, roundNo int, items []*domain.RoundResult) (*service.BatchOutcome[*domain.RoundResult], error)
	AssignEventPrizes(ctx context.Context, actor domain.Identity, eventID string, items []*domain.PrizeAward) (*service.BatchOutcome[*domain.PrizeAward], error)
	GetRoundResults(ctx context.Context, eventID string, roundNo, page, pageSize int) (*service.ResultsPage, error)
}

// caller returns the authenticated identity, writing a 401 when absent.
func caller(w http.ResponseWriter, r *http.Request, log *logger.Logger) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, r, errors.NewAuthenticationError("Authentication required"), log)
	}
	return identity, ok
}

// batch renders a bulk outcome: 201 when every item was recorded, 207 when
// some failed and 400 when none were recorded.
func batch[T any](w http.ResponseWriter, out *service.BatchOutcome[T], message string) {
	status := response.StatusSuccess
	switch out.Status() {
	case service.BatchPartial:
		status = response.StatusPartial
	case service.BatchFailure:
		status = response.StatusError
		message = "No items were recorded"
	}
	response.JSON(w, out.HTTPStatus(), response.Envelope{Status: status, Message: message, Data: out})
}
