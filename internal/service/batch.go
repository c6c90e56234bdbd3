package service

import "net/http"

// Per-item failure messages reported inside a batch outcome.
const (
	ItemNotFound          = "not found"
	ItemRoundNotFound     = "round not found"
	ItemEventNotFound     = "event not found"
	ItemNoRounds          = "event has no rounds"
	ItemNotCheckedIn      = "not checked in to this round"
	ItemNotCheckedInFinal = "not checked in to final round"
	ItemPrizeNotFound     = "prize position not found"
	ItemAlreadyAwarded    = "already awarded"
	ItemInternalError     = "internal error"
)

type BatchStatus string

const (
	BatchSuccess BatchStatus = "success"
	BatchPartial BatchStatus = "partial"
	BatchFailure BatchStatus = "failure"
)

// ItemError names the rejected target of one batch item.
type ItemError struct {
	UserID string `json:"user_id,omitempty"`
	TeamID string `json:"team_id,omitempty"`
	Error  string `json:"error"`
}

// BatchOutcome accumulates independently persisted items of a bulk operation.
type BatchOutcome[T any] struct {
	RecordedCount int         `json:"recorded_count"`
	Results       []T         `json:"results"`
	UserErrors    []ItemError `json:"user_errors"`
	TeamErrors    []ItemError `json:"team_errors"`
}

func NewBatchOutcome[T any]() *BatchOutcome[T] {
	return &BatchOutcome[T]{
		Results:    []T{},
		UserErrors: []ItemError{},
		TeamErrors: []ItemError{},
	}
}

func (b *BatchOutcome[T]) Record(v T) {
	b.Results = append(b.Results, v)
	b.RecordedCount++
}

// Fail files the item under user or team errors depending on its target.
func (b *BatchOutcome[T]) Fail(userID, teamID *string, msg string) {
	switch {
	case userID != nil:
		b.UserErrors = append(b.UserErrors, ItemError{UserID: *userID, Error: msg})
	case teamID != nil:
		b.TeamErrors = append(b.TeamErrors, ItemError{TeamID: *teamID, Error: msg})
	}
}

func (b *BatchOutcome[T]) Failed() int {
	return len(b.UserErrors) + len(b.TeamErrors)
}

func (b *BatchOutcome[T]) Status() BatchStatus {
	switch {
	case b.RecordedCount == 0:
		return BatchFailure
	case b.Failed() > 0:
		return BatchPartial
	default:
		return BatchSuccess
	}
}

// HTTPStatus maps the outcome to 201, 207 or 400.
func (b *BatchOutcome[T]) HTTPStatus() int {
	switch b.Status() {
	case BatchSuccess:
		return http.StatusCreated
	case BatchPartial:
		return http.StatusMultiStatus
	default:
		return http.StatusBadRequest
	}
}
