package domain

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleCrew        Role = "crew"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleCrew, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// IsOperator reports whether the role may operate the front desk (scan, check in, record results).
func (r Role) IsOperator() bool {
	return r == RoleCrew || r == RoleOrganizer || r == RoleAdmin
}

// CanManageEvents reports whether the role may create events.
func (r Role) CanManageEvents() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// PaymentStatus mirrors the payment provider's view of a participant.
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "CREATED"
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentExempted PaymentStatus = "EXEMPTED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Settled is true for PAID and EXEMPTED.
func (s PaymentStatus) Settled() bool {
	return s == PaymentPaid || s == PaymentExempted
}

// User represents a registered fest account
type User struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	Name             string        `json:"name"`
	Role             Role          `json:"role"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	ProfileCompleted bool          `json:"profile_completed"`
	InstitutionID    string        `json:"institution_id"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
