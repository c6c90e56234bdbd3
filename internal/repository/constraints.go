package repository

// Conflict reasons surfaced to services.
const (
	ReasonDuplicateTeamName = "duplicate_team_name"
	ReasonDuplicateInvite   = "duplicate_invitation"
	ReasonAlreadyMember     = "already_member"
	ReasonAlreadyRegistered = "already_registered"
	ReasonAlreadyCheckedIn  = "already_checked_in"
	ReasonAlreadyAwarded    = "already_awarded"
	ReasonDuplicateRound    = "duplicate_round_number"
	ReasonDuplicatePrize    = "duplicate_prize_position"
	ReasonDuplicateRule     = "duplicate_rule_position"
	ReasonDuplicateCrew     = "duplicate_crew_member"
	ReasonDuplicateEmail    = "duplicate_email"
	ReasonDuplicateResult   = "duplicate_result"
	ReasonUnknownConstraint = "conflict"
)

// constraintReasons is the single place where store constraint names become
// domain conflict reasons. Names must match the schema in schema.go.
var constraintReasons = map[string]string{
	"users_email_lower_key":        ReasonDuplicateEmail,
	"teams_name_key":               ReasonDuplicateTeamName,
	"team_members_pkey":            ReasonAlreadyMember,
	"invitations_pending_uniq":     ReasonDuplicateInvite,
	"rounds_event_number_key":      ReasonDuplicateRound,
	"rules_event_position_key":     ReasonDuplicateRule,
	"prizes_event_position_key":    ReasonDuplicatePrize,
	"event_crew_pkey":              ReasonDuplicateCrew,
	"registrations_event_user_key": ReasonAlreadyRegistered,
	"registrations_event_team_key": ReasonAlreadyRegistered,
	"check_ins_user_round_key":     ReasonAlreadyCheckedIn,
	"round_results_round_user_key": ReasonDuplicateResult,
	"round_results_round_team_key": ReasonDuplicateResult,
	"prize_awards_prize_user_key":  ReasonAlreadyAwarded,
	"prize_awards_prize_team_key":  ReasonAlreadyAwarded,
}

// ConflictReason returns the domain reason for a unique constraint name.
func ConflictReason(constraint string) string {
	if reason, ok := constraintReasons[constraint]; ok {
		return reason
	}
	return ReasonUnknownConstraint
}
