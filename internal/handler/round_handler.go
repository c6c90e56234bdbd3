package handler

import (
	"net/http"

	"fest-backend/internal/domain"
	"fest-backend/internal/request"
	"fest-backend/internal/response"
	"fest-backend/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// RoundHandler serves the front-desk and judging endpoints of an event.
type RoundHandler struct {
	checkIns CheckInAPI
	results  ResultAPI
	log      *logger.Logger
}

func NewRoundHandler(checkIns CheckInAPI, results ResultAPI, log *logger.Logger) *RoundHandler {
	return &RoundHandler{
		checkIns: checkIns,
		results:  results,
		log:      log,
	}
}

func roundRef(r *http.Request) (request.RoundRef, error) {
	return request.ParseRoundRef(chi.URLParam(r, "eventID"), chi.URLParam(r, "roundNo"))
}

// Scan handles POST /api/v1/events/{eventID}/rounds/{roundNo}/scan
func (h *RoundHandler) Scan(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	ref, err := roundRef(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseScan(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	preview, err := h.checkIns.ScanForRound(r.Context(), identity, ref.EventID, ref.RoundNo, req.UserID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", preview)
}

// CheckIn handles POST /api/v1/events/{eventID}/rounds/{roundNo}/checkins
func (h *RoundHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	ref, err := roundRef(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	req, err := request.ParseCheckIn(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	result, err := h.checkIns.CheckInRoundParticipants(r.Context(), identity, ref.EventID, ref.RoundNo, req.UserIDs, req.TeamID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "Checked in", result)
}

// RecordResults handles POST /api/v1/events/{eventID}/rounds/{roundNo}/results
func (h *RoundHandler) RecordResults(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	ref, err := roundRef(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	items, err := request.ParseResults(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	results := make([]*domain.RoundResult, 0, len(items))
	for _, it := range items {
		results = append(results, &domain.RoundResult{
			UserID: it.UserID,
			TeamID: it.TeamID,
			Points: it.Points,
			Status: it.Status,
		})
	}

	out, err := h.results.AssignRoundResults(r.Context(), identity, ref.EventID, ref.RoundNo, results)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	batch(w, out, "Results recorded")
}

// ListResults handles GET /api/v1/events/{eventID}/rounds/{roundNo}/results
func (h *RoundHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	ref, err := roundRef(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	page, err := request.ParsePage(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	results, err := h.results.GetRoundResults(r.Context(), ref.EventID, ref.RoundNo, page.Page, page.PageSize)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	response.Success(w, http.StatusOK, "", results)
}

// AwardPrizes handles POST /api/v1/events/{eventID}/prizes/awards
func (h *RoundHandler) AwardPrizes(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r, h.log)
	if !ok {
		return
	}
	eventID, err := request.ParseID("eventID", chi.URLParam(r, "eventID"))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	items, err := request.ParsePrizeAwards(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	awards := make([]*domain.PrizeAward, 0, len(items))
	for _, it := range items {
		awards = append(awards, &domain.PrizeAward{Position: it.Position, UserID: it.UserID, TeamID: it.TeamID})
	}

	out, err := h.results.AssignEventPrizes(r.Context(), identity, eventID, awards)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}
	batch(w, out, "Prizes awarded")
}
