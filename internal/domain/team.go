package domain

import "time"

// Team is a group of participants led by one leader.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeaderID  string    `json:"leader_id"`
	EventID   *string   `json:"event_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Locked is true once the team is bound to an event.
func (t *Team) Locked() bool {
	return t.EventID != nil
}

// TeamMember is a membership row joined with the member's identity.
type TeamMember struct {
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation asks a user to join a team.
type Invitation struct {
	ID          string           `json:"id"`
	TeamID      string           `json:"team_id"`
	TeamName    string           `json:"team_name,omitempty"`
	InviteeID   string           `json:"invitee_id"`
	InviteeMail string           `json:"invitee_email,omitempty"`
	InviterID   string           `json:"inviter_id"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// TeamDetail is the read model returned to team members.
type TeamDetail struct {
	Team
	Members            []*TeamMember `json:"members"`
	PendingInvitations []*Invitation `json:"pending_invitations"`
}
