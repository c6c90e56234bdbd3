package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers bundles everything mounted under /api/v1.
type Handlers struct {
	Teams  *TeamHandler
	Events *EventHandler
	Rounds *RoundHandler
}

// Routes builds the versioned API. authenticate guards every route except the
// public event and result reads; scanLimit throttles the front-desk routes.
func Routes(h Handlers, authenticate, scanLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/events", h.Events.ListEvents)
	r.Get("/events/{eventID}", h.Events.GetEvent)
	r.Get("/events/{eventID}/rounds/{roundNo}/results", h.Rounds.ListResults)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.Teams.CreateTeam)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Teams.GetTeam)
				r.Patch("/", h.Teams.UpdateTeam)
				r.Delete("/", h.Teams.DeleteTeam)
				r.Post("/invitations", h.Teams.InviteMember)
				r.Delete("/invitations/{invitationID}", h.Teams.DeleteInvitation)
				r.Delete("/members/{memberID}", h.Teams.RemoveMember)
			})
		})

		r.Get("/invitations", h.Teams.ListInvitations)
		r.Post("/invitations/{invitationID}/respond", h.Teams.RespondToInvitation)

		r.Post("/events", h.Events.CreateEvent)
		r.Post("/events/{eventID}/registrations", h.Events.Register)
		r.Post("/events/{eventID}/prizes/awards", h.Rounds.AwardPrizes)
		r.Post("/events/{eventID}/rounds/{roundNo}/results", h.Rounds.RecordResults)

		r.Group(func(r chi.Router) {
			r.Use(scanLimit)
			r.Post("/events/{eventID}/rounds/{roundNo}/scan", h.Rounds.Scan)
			r.Post("/events/{eventID}/rounds/{roundNo}/checkins", h.Rounds.CheckIn)
		})
	})

	return r
}
