package handler

import (
	"net/http"

	"fest-backend/internal/request"
	"fest-backend/internal/response"
	"fest-backend/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teams TeamAPI
	log   *logger.Logger
}

func NewTeamHandler(teams TeamAPI, log *logger.Logger) *TeamHandler {
	return &TeamHandler{
		teams: teams,
		log:   log,
	}
}

// CreateTeam handles POST /api/v1/teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	req, err := request.ParseCreateTeam(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	result, err := h.teams.CreateTeam(r.Context(), identity.UserID, req.Name, req.MemberEmails)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusCreated, "Team created", result)
}

// GetTeam handles GET /api/v1/teams/{teamID}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	detail, err := h.teams.GetTeam(r.Context(), teamID, identity)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", detail)
}

// UpdateTeam handles PATCH /api/v1/teams/{teamID}
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseUpdateTeam(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	detail, err := h.teams.UpdateTeam(r.Context(), teamID, identity.UserID, req.Name, req.EventID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "Team updated", detail)
}

// DeleteTeam handles DELETE /api/v1/teams/{teamID}
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	if err := h.teams.DeleteTeam(r.Context(), teamID, identity.UserID); err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "Team deleted", nil)
}

// InviteMember handles POST /api/v1/teams/{teamID}/invitations
func (h *TeamHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseInvite(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	inv, err := h.teams.InviteTeamMember(r.Context(), teamID, identity.UserID, req.Email)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusCreated, "Invitation sent", inv)
}

// DeleteInvitation handles DELETE /api/v1/teams/{teamID}/invitations/{invitationID}
func (h *TeamHandler) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	invitationID, err := request.ParseID("invitationID", chi.URLParam(r, "invitationID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	if err := h.teams.DeleteInvitation(r.Context(), teamID, invitationID, identity.UserID); err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "Invitation withdrawn", nil)
}

// RemoveMember handles DELETE /api/v1/teams/{teamID}/members/{memberID}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	teamID, err := request.ParseID("teamID", chi.URLParam(r, "teamID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	memberID, err := request.ParseID("memberID", chi.URLParam(r, "memberID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	if err := h.teams.RemoveMember(r.Context(), teamID, identity.UserID, memberID); err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "Member removed", nil)
}

// ListInvitations handles GET /api/v1/invitations
func (h *TeamHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}

	invs, err := h.teams.ListMyInvitations(r.Context(), identity.UserID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", invs)
}

// RespondToInvitation handles POST /api/v1/invitations/{invitationID}/respond
func (h *TeamHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	invitationID, err := request.ParseID("invitationID", chi.URLParam(r, "invitationID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseRespond(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	inv, err := h.teams.RespondToInvitation(r.Context(), invitationID, identity.UserID, req.Accept)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	message := "Invitation declined"
	if req.Accept {
		message = "Invitation accepted"
	}
	response.Success(w, http.StatusOK, message, inv)
}
