package domain

import "time"

// CheckIn admits one participant to one round.
type CheckIn struct {
	ID          string    `json:"id"`
	RoundID     string    `json:"round_id"`
	UserID      string    `json:"user_id"`
	TeamID      *string   `json:"team_id,omitempty"`
	CheckedInBy string    `json:"checked_in_by"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

type ResultStatus string

const (
	ResultQualified    ResultStatus = "QUALIFIED"
	ResultEliminated   ResultStatus = "ELIMINATED"
	ResultDisqualified ResultStatus = "DISQUALIFIED"
)

func (s ResultStatus) Valid() bool {
	switch s {
	case ResultQualified, ResultEliminated, ResultDisqualified:
		return true
	}
	return false
}

// RoundResult is the evaluation of a user or a team for a round.
type RoundResult struct {
	ID          string       `json:"id"`
	RoundID     string       `json:"round_id"`
	UserID      *string      `json:"user_id,omitempty"`
	TeamID      *string      `json:"team_id,omitempty"`
	Points      float64      `json:"points"`
	Status      ResultStatus `json:"status"`
	EvaluatedBy string       `json:"evaluated_by"`
	EvaluatedAt time.Time    `json:"evaluated_at"`
}

// RoundResultEntry is a result joined with the identity of its target.
type RoundResultEntry struct {
	RoundResult
	UserName string        `json:"user_name,omitempty"`
	TeamName string        `json:"team_name,omitempty"`
	Members  []*TeamMember `json:"members,omitempty"`
}

type PrizeAward struct {
	ID        string    `json:"id"`
	PrizeID   string    `json:"prize_id"`
	Position  int       `json:"position"`
	UserID    *string   `json:"user_id,omitempty"`
	TeamID    *string   `json:"team_id,omitempty"`
	AwardedBy string    `json:"awarded_by"`
	AwardedAt time.Time `json:"awarded_at"`
}
