package domain

import "time"

type ParticipationMode string

const (
	ModeSolo ParticipationMode = "solo"
	ModeTeam ParticipationMode = "team"
)

// Event is one competition track of the fest.
type Event struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Mode        ParticipationMode `json:"mode"`
	Capacity    int               `json:"capacity"`
	MinTeamSize int               `json:"min_team_size"`
	MaxTeamSize int               `json:"max_team_size"`
	OpensAt     time.Time         `json:"registration_opens_at"`
	ClosesAt    time.Time         `json:"registration_closes_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// RegistrationOpen reports whether now falls inside [OpensAt, ClosesAt).
func (e *Event) RegistrationOpen(now time.Time) bool {
	return !now.Before(e.OpensAt) && now.Before(e.ClosesAt)
}

type Round struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	Number   int       `json:"number"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type Rule struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

type Prize struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	Position int    `json:"position"`
	Reward   string `json:"reward"`
}

type CrewMember struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Duty    string `json:"duty"`
}

// EventAggregate is the verbose read model of an event.
type EventAggregate struct {
	Event
	Rounds []*Round      `json:"rounds"`
	Rules  []*Rule       `json:"rules"`
	Prizes []*Prize      `json:"prizes"`
	Crew   []*CrewMember `json:"crew"`
}

// Registration binds exactly one of a user or a team to an event.
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    *string   `json:"user_id,omitempty"`
	TeamID    *string   `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
