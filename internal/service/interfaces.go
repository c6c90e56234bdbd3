package service

import (
	"context"

	"fest-backend/internal/domain"
)

// PaymentLookup reports a participant's payment status as seen by the payment provider.
type PaymentLookup interface {
	PaymentStatus(ctx context.Context, user *domain.User) (domain.PaymentStatus, error)
}

// ProfileLookup reports whether a participant has completed their profile.
type ProfileLookup interface {
	ProfileCompleted(ctx context.Context, user *domain.User) (bool, error)
}

// StoredAccountStatus answers both lookups from the user row itself. The
// payment and profile systems keep those columns current.
type StoredAccountStatus struct{}

func (StoredAccountStatus) PaymentStatus(_ context.Context, user *domain.User) (domain.PaymentStatus, error) {
	return user.PaymentStatus, nil
}

func (StoredAccountStatus) ProfileCompleted(_ context.Context, user *domain.User) (bool, error) {
	return user.ProfileCompleted, nil
}

// Services aggregates the domain services
type Services struct {
	Teams         *TeamService
	Registrations *RegistrationService
	CheckIns      *CheckInService
	Results       *ResultService
	Events        *EventService
	Cache         *CacheService
}
