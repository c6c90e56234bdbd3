package request

import (
	"net/http"
	"strings"
	"time"

	"fest-backend/internal/domain"
)

const (
	maxEventNameLen = 120
	maxRuleLen      = 2000
	maxRewardLen    = 200
	maxCapacity     = 100000
	maxTeamSize     = 50
)

type RoundSpec struct {
	Number   int
	StartsAt time.Time
	EndsAt   time.Time
}

type PrizeSpec struct {
	Position int
	Reward   string
}

type CrewSpec struct {
	UserID string
	Duty   string
}

// CreateEvent is a validated event definition with its children.
type CreateEvent struct {
	Event  domain.Event
	Rounds []RoundSpec
	Rules  []string
	Prizes []PrizeSpec
	Crew   []CrewSpec
}

type createEventBody struct {
	Name        string    `json:"name"`
	Mode        string    `json:"mode"`
	Capacity    int       `json:"capacity"`
	MinTeamSize int       `json:"min_team_size"`
	MaxTeamSize int       `json:"max_team_size"`
	OpensAt     time.Time `json:"registration_opens_at"`
	ClosesAt    time.Time `json:"registration_closes_at"`
	Rounds      []struct {
		Number   int       `json:"number"`
		StartsAt time.Time `json:"starts_at"`
		EndsAt   time.Time `json:"ends_at"`
	} `json:"rounds"`
	Rules  []string `json:"rules"`
	Prizes []struct {
		Position int    `json:"position"`
		Reward   string `json:"reward"`
	} `json:"prizes"`
	Crew []struct {
		UserID string `json:"user_id"`
		Duty   string `json:"duty"`
	} `json:"crew"`
}

// ParseCreateEvent validates POST /events. Solo events get a team size of 1.
func ParseCreateEvent(r *http.Request) (CreateEvent, error) {
	var body createEventBody
	if err := DecodeJSON(r, &body); err != nil {
		return CreateEvent{}, err
	}

	var p Parser
	var out CreateEvent
	ev := &out.Event
	ev.Name = p.Text("name", body.Name, maxEventNameLen)
	ev.Capacity = p.IntRange("capacity", body.Capacity, 1, maxCapacity)

	switch domain.ParticipationMode(strings.ToLower(strings.TrimSpace(body.Mode))) {
	case domain.ModeSolo:
		ev.Mode = domain.ModeSolo
		ev.MinTeamSize, ev.MaxTeamSize = 1, 1
	case domain.ModeTeam:
		ev.Mode = domain.ModeTeam
		ev.MinTeamSize = p.IntRange("min_team_size", body.MinTeamSize, 1, maxTeamSize)
		ev.MaxTeamSize = p.IntRange("max_team_size", body.MaxTeamSize, 1, maxTeamSize)
		if ev.MinTeamSize > ev.MaxTeamSize {
			p.Fail("min_team_size", ReasonOutOfRange)
		}
	case "":
		p.Fail("mode", ReasonRequired)
	default:
		p.Fail("mode", ReasonInvalidValue)
	}

	if body.OpensAt.IsZero() {
		p.Fail("registration_opens_at", ReasonRequired)
	}
	if body.ClosesAt.IsZero() {
		p.Fail("registration_closes_at", ReasonRequired)
	} else if !body.ClosesAt.After(body.OpensAt) {
		p.Fail("registration_closes_at", ReasonOutOfRange)
	}
	ev.OpensAt, ev.ClosesAt = body.OpensAt.UTC(), body.ClosesAt.UTC()

	if len(body.Rounds) == 0 {
		p.Fail("rounds", ReasonRequired)
	}
	numbers := make(map[int]struct{}, len(body.Rounds))
	for i, rd := range body.Rounds {
		n := p.IntRange(indexed("rounds", i, "number"), rd.Number, 1, 100)
		if _, dup := numbers[n]; dup {
			p.Fail(indexed("rounds", i, "number"), ReasonDuplicate)
		}
		numbers[n] = struct{}{}
		if rd.StartsAt.IsZero() || rd.EndsAt.IsZero() || !rd.EndsAt.After(rd.StartsAt) {
			p.Fail(indexed("rounds", i, "ends_at"), ReasonOutOfRange)
		}
		out.Rounds = append(out.Rounds, RoundSpec{Number: n, StartsAt: rd.StartsAt.UTC(), EndsAt: rd.EndsAt.UTC()})
	}
	// Round numbers must form 1..N so "previous round" is always defined.
	for n := 1; n <= len(body.Rounds); n++ {
		if _, ok := numbers[n]; !ok {
			p.Fail("rounds", ReasonInvalidValue)
			break
		}
	}

	for i, text := range body.Rules {
		out.Rules = append(out.Rules, p.Text(indexed("rules", i, ""), text, maxRuleLen))
	}

	positions := make(map[int]struct{}, len(body.Prizes))
	for i, pz := range body.Prizes {
		pos := p.IntRange(indexed("prizes", i, "position"), pz.Position, 1, 100)
		if _, dup := positions[pos]; dup {
			p.Fail(indexed("prizes", i, "position"), ReasonDuplicate)
		}
		positions[pos] = struct{}{}
		out.Prizes = append(out.Prizes, PrizeSpec{
			Position: pos,
			Reward:   p.Text(indexed("prizes", i, "reward"), pz.Reward, maxRewardLen),
		})
	}

	crew := make(map[string]struct{}, len(body.Crew))
	for i, c := range body.Crew {
		id := p.UUID(indexed("crew", i, "user_id"), c.UserID)
		if id == "" {
			continue
		}
		if _, dup := crew[id]; dup {
			p.Fail(indexed("crew", i, "user_id"), ReasonDuplicate)
			continue
		}
		crew[id] = struct{}{}
		out.Crew = append(out.Crew, CrewSpec{UserID: id, Duty: strings.TrimSpace(c.Duty)})
	}

	return out, p.Err()
}

// Aggregate converts the definition into the model persisted by the event service.
func (c CreateEvent) Aggregate() *domain.EventAggregate {
	agg := &domain.EventAggregate{Event: c.Event}
	for _, rd := range c.Rounds {
		agg.Rounds = append(agg.Rounds, &domain.Round{Number: rd.Number, StartsAt: rd.StartsAt, EndsAt: rd.EndsAt})
	}
	for _, text := range c.Rules {
		agg.Rules = append(agg.Rules, &domain.Rule{Text: text})
	}
	for _, pz := range c.Prizes {
		agg.Prizes = append(agg.Prizes, &domain.Prize{Position: pz.Position, Reward: pz.Reward})
	}
	for _, cr := range c.Crew {
		agg.Crew = append(agg.Crew, &domain.CrewMember{UserID: cr.UserID, Duty: cr.Duty})
	}
	return agg
}

// Register is an event registration. A nil TeamID registers the caller solo.
type Register struct {
	TeamID *string
}

// ParseRegister accepts an empty body for solo registrations.
func ParseRegister(r *http.Request) (Register, error) {
	var body struct {
		TeamID *string `json:"team_id"`
	}
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := DecodeJSON(r, &body); err != nil {
			return Register{}, err
		}
	}
	var p Parser
	out := Register{TeamID: p.OptionalUUID("team_id", body.TeamID)}
	return out, p.Err()
}
