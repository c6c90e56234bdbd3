package request

import (
	"net/http"
	"strings"
)

const (
	maxTeamNameLen   = 64
	maxInviteeEmails = 16
)

// CreateTeam is a validated team creation request.
type CreateTeam struct {
	Name         string
	MemberEmails []string
}

type createTeamBody struct {
	Name         string   `json:"name"`
	MemberEmails []string `json:"member_emails"`
}

// ParseCreateTeam validates the body of POST /teams. Member emails are
// lowercased and de-duplicated preserving first occurrence. Malformed
// addresses are kept so team creation reports them with unknown ones.
func ParseCreateTeam(r *http.Request) (CreateTeam, error) {
	var body createTeamBody
	if err := DecodeJSON(r, &body); err != nil {
		return CreateTeam{}, err
	}

	var p Parser
	out := CreateTeam{Name: p.Text("name", body.Name, maxTeamNameLen)}

	if len(body.MemberEmails) > maxInviteeEmails {
		p.Fail("member_emails", ReasonOutOfRange)
	}
	seen := make(map[string]struct{}, len(body.MemberEmails))
	for i, raw := range body.MemberEmails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			p.Fail(indexed("member_emails", i, ""), ReasonRequired)
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out.MemberEmails = append(out.MemberEmails, email)
	}

	return out, p.Err()
}

// Invite is a validated single invitation request.
type Invite struct {
	Email string
}

func ParseInvite(r *http.Request) (Invite, error) {
	var body struct {
		Email string `json:"email"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return Invite{}, err
	}
	var p Parser
	out := Invite{Email: p.Email("email", body.Email)}
	return out, p.Err()
}

// Respond carries the invitee's decision.
type Respond struct {
	Accept bool
}

func ParseRespond(r *http.Request) (Respond, error) {
	var body struct {
		Action string `json:"action"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return Respond{}, err
	}
	var p Parser
	var out Respond
	switch strings.ToLower(strings.TrimSpace(body.Action)) {
	case "accept":
		out.Accept = true
	case "decline":
	case "":
		p.Fail("action", ReasonRequired)
	default:
		p.Fail("action", ReasonInvalidValue)
	}
	return out, p.Err()
}

// UpdateTeam is a PATCH with optional rename and event binding.
type UpdateTeam struct {
	Name    *string
	EventID *string
}

func ParseUpdateTeam(r *http.Request) (UpdateTeam, error) {
	var body struct {
		Name    *string `json:"name"`
		EventID *string `json:"event_id"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		return UpdateTeam{}, err
	}

	var p Parser
	var out UpdateTeam
	if body.Name != nil {
		name := p.Text("name", *body.Name, maxTeamNameLen)
		out.Name = &name
	}
	out.EventID = p.OptionalUUID("event_id", body.EventID)
	if body.Name == nil && body.EventID == nil {
		p.Fail("body", ReasonRequired)
	}
	return out, p.Err()
}

