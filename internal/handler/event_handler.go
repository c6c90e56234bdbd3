package handler

import (
	"net/http"

	"fest-backend/internal/request"
	"fest-backend/internal/response"
	"fest-backend/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type EventHandler struct {
	events        EventAPI
	registrations RegistrationAPI
	log           *logger.Logger
}

func NewEventHandler(events EventAPI, registrations RegistrationAPI, log *logger.Logger) *EventHandler {
	return &EventHandler{
		events:        events,
		registrations: registrations,
		log:           log,
	}
}

// CreateEvent handles POST /api/v1/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	req, err := request.ParseCreateEvent(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	agg, err := h.events.CreateEvent(r.Context(), identity, req.Aggregate())
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusCreated, "Event created", agg)
}

// ListEvents handles GET /api/v1/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEventsVerbose(r.Context())
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", events)
}

// GetEvent handles GET /api/v1/events/{eventID}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := request.ParseID("eventID", chi.URLParam(r, "eventID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	agg, err := h.events.GetEventVerbose(r.Context(), eventID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", agg)
}

// Register handles POST /api/v1/events/{eventID}/registrations. A body with
// team_id registers that team on behalf of its leader; no body registers the
// caller solo.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	eventID, err := request.ParseID("eventID", chi.URLParam(r, "eventID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseRegister(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	if req.TeamID != nil {
		reg, err := h.registrations.RegisterTeam(r.Context(), eventID, *req.TeamID, identity.UserID)
		if err != nil {
			response.Error(w, r, err, h.log)
			return
		}
		response.Success(w, http.StatusCreated, "Team registered", reg)
		return
	}

	reg, err := h.registrations.RegisterSolo(r.Context(), eventID, identity.UserID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusCreated, "Registered", reg)
}
