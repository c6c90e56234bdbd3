package request

import (
	"net/http"
	"strings"

	"fest-backend/internal/domain"
)

const (
	maxBatchItems   = 500
	defaultPageSize = 20
	maxPageSize     = 100
)

// RoundRef addresses a round by event and ordinal.
type RoundRef struct {
	EventID string
	RoundNo int
}

// ParseRoundRef validates the {eventID}/{roundNo} path pair.
func ParseRoundRef(eventID, roundNo string) (RoundRef, error) {
	var p Parser
	ref := RoundRef{
		EventID: p.UUID("eventID", eventID),
		RoundNo: p.PathInt("roundNo", roundNo),
	}
	return ref, p.Err()
}

// ParseID validates a single uuid path parameter.
func ParseID(field, value string) (string, error) {
	var p Parser
	id := p.UUID(field, value)
	return id, p.Err()
}

type Scan struct {
	UserID string
}

func ParseScan(r *http.Request) (Scan, error) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return Scan{}, err
	}
	var p Parser
	out := Scan{UserID: p.UUID("user_id", body.UserID)}
	return out, p.Err()
}

// CheckIn lists the participants admitted together; TeamID is set for team check-ins.
type CheckIn struct {
	UserIDs []string
	TeamID  *string
}

func ParseCheckIn(r *http.Request) (CheckIn, error) {
	var body struct {
		UserIDs []string `json:"user_ids"`
		TeamID  *string  `json:"team_id"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return CheckIn{}, err
	}

	var p Parser
	var out CheckIn
	if len(body.UserIDs) == 0 {
		p.Fail("user_ids", ReasonRequired)
	}
	if len(body.UserIDs) > maxTeamSize {
		p.Fail("user_ids", ReasonOutOfRange)
	}
	seen := make(map[string]struct{}, len(body.UserIDs))
	for i, raw := range body.UserIDs {
		id := p.UUID(indexed("user_ids", i, ""), raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			p.Fail(indexed("user_ids", i, ""), ReasonDuplicate)
			continue
		}
		seen[id] = struct{}{}
		out.UserIDs = append(out.UserIDs, id)
	}
	out.TeamID = p.OptionalUUID("team_id", body.TeamID)
	return out, p.Err()
}

// ResultItem is one evaluation targeting exactly one of a user or a team.
type ResultItem struct {
	UserID *string
	TeamID *string
	Points float64
	Status domain.ResultStatus
}

type targetBody struct {
	UserID *string `json:"user_id"`
	TeamID *string `json:"team_id"`
}

func (p *Parser) target(field string, i int, t targetBody) (*string, *string) {
	hasUser := t.UserID != nil && strings.TrimSpace(*t.UserID) != ""
	hasTeam := t.TeamID != nil && strings.TrimSpace(*t.TeamID) != ""
	if hasUser == hasTeam {
		p.Fail(indexed(field, i, ""), ReasonAmbiguous)
		return nil, nil
	}
	if hasUser {
		return p.OptionalUUID(indexed(field, i, "user_id"), t.UserID), nil
	}
	return nil, p.OptionalUUID(indexed(field, i, "team_id"), t.TeamID)
}

// ParseResults validates a result batch. Shape errors reject the whole
// request; per-item business failures are reported later by the service.
func ParseResults(r *http.Request) ([]ResultItem, error) {
	var body struct {
		Results []struct {
			targetBody
			Points float64 `json:"points"`
			Status string  `json:"status"`
		} `json:"results"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return nil, err
	}

	var p Parser
	if len(body.Results) == 0 {
		p.Fail("results", ReasonRequired)
	}
	if len(body.Results) > maxBatchItems {
		p.Fail("results", ReasonOutOfRange)
	}
	items := make([]ResultItem, 0, len(body.Results))
	for i, raw := range body.Results {
		userID, teamID := p.target("results", i, raw.targetBody)
		status := domain.ResultStatus(strings.ToUpper(strings.TrimSpace(raw.Status)))
		if !status.Valid() {
			p.Fail(indexed("results", i, "status"), ReasonInvalidValue)
		}
		if raw.Points < 0 {
			p.Fail(indexed("results", i, "points"), ReasonOutOfRange)
		}
		items = append(items, ResultItem{UserID: userID, TeamID: teamID, Points: raw.Points, Status: status})
	}
	return items, p.Err()
}

// PrizeItem awards the prize at Position to exactly one of a user or a team.
type PrizeItem struct {
	Position int
	UserID   *string
	TeamID   *string
}

func ParsePrizeAwards(r *http.Request) ([]PrizeItem, error) {
	var body struct {
		Awards []struct {
			targetBody
			Position int `json:"position"`
		} `json:"awards"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return nil, err
	}

	var p Parser
	if len(body.Awards) == 0 {
		p.Fail("awards", ReasonRequired)
	}
	if len(body.Awards) > maxBatchItems {
		p.Fail("awards", ReasonOutOfRange)
	}
	items := make([]PrizeItem, 0, len(body.Awards))
	for i, raw := range body.Awards {
		userID, teamID := p.target("awards", i, raw.targetBody)
		pos := p.IntRange(indexed("awards", i, "position"), raw.Position, 1, 100)
		items = append(items, PrizeItem{Position: pos, UserID: userID, TeamID: teamID})
	}
	return items, p.Err()
}

// Page is a validated pagination window.
type Page struct {
	Page     int
	PageSize int
}

func (pg Page) Offset() int {
	return (pg.Page - 1) * pg.PageSize
}

func ParsePage(r *http.Request) (Page, error) {
	var p Parser
	out := Page{
		Page:     p.QueryInt(r, "page", 1, 1, 1_000_000),
		PageSize: p.QueryInt(r, "page_size", defaultPageSize, 1, maxPageSize),
	}
	return out, p.Err()
}
