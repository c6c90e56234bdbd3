package service

import (
	"errors"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	apperrors "fest-backend/pkg/errors"
)

// Machine-readable rejection reasons surfaced to clients.
const (
	ReasonPaymentPending          = "payment_pending"
	ReasonIncompleteProfile       = "incomplete_profile"
	ReasonDuplicateTeamName       = "duplicate_team_name"
	ReasonInvalidMemberEmails     = "invalid_member_emails"
	ReasonDifferentInstitution    = "different_institution"
	ReasonCannotInviteSelf        = "cannot_invite_self"
	ReasonTeamNotFound            = "team_not_found"
	ReasonNotTeamLeader           = "not_team_leader"
	ReasonNotTeamMember           = "not_team_member"
	ReasonTeamLocked              = "team_locked"
	ReasonUserNotFound            = "user_not_found"
	ReasonAlreadyMember           = "already_member"
	ReasonDuplicateInvitation     = "duplicate_invitation"
	ReasonInvitationNotFound      = "invitation_not_found"
	ReasonNotInvitee              = "not_invitee"
	ReasonInvitationResolved      = "invitation_already_resolved"
	ReasonCannotRemoveLeader      = "cannot_remove_leader"
	ReasonMemberNotFound          = "member_not_found"
	ReasonEventNotFound           = "event_not_found"
	ReasonRoundNotFound           = "round_not_found"
	ReasonNotRegistered           = "not_registered"
	ReasonNotQualified            = "not_qualified"
	ReasonAlreadyCheckedIn        = "already_checked_in"
	ReasonAlreadyRegistered       = "already_registered"
	ReasonMemberAlreadyRegistered = "member_already_registered"
	ReasonRegistrationClosed      = "registration_closed"
	ReasonEventFull               = "event_full"
	ReasonTeamSizeOutOfRange      = "team_size_out_of_range"
	ReasonWrongMode               = "wrong_participation_mode"
	ReasonTeamMismatch            = "team_mismatch"
	ReasonForbiddenRole           = "forbidden_role"
)

// Detail keys listing the emails rejected during team creation.
const (
	DetailInvalidEmails          = "invalid_emails"
	DetailIncompleteProfileEmail = "incomplete_profile_emails"
	DetailPaymentPendingEmails   = "payment_pending_emails"
	DetailDifferentInstitution   = "different_institution_emails"
)

func internalErr(op string, err error) error {
	return apperrors.NewInternalError("Failed to "+op, err)
}

// notFound maps repository.ErrNotFound to a 404 with reason and passes any
// other error through as internal.
func notFound(err error, reason, message, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFoundError(reason, message)
	}
	return internalErr(op, err)
}

func requireOperator(actor domain.Identity) error {
	if !actor.Role.IsOperator() {
		return apperrors.NewForbiddenError(ReasonForbiddenRole, "Only event crew may perform this action")
	}
	return nil
}

func requireEventManager(actor domain.Identity) error {
	if !actor.Role.CanManageEvents() {
		return apperrors.NewForbiddenError(ReasonForbiddenRole, "Only organizers may perform this action")
	}
	return nil
}
