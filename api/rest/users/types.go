package users

import (
	"context"
	"time"

	"codeberg.org/lunos/server/lunos/preferences"
)

// counts and consumes the daily message allowance
type UsageStore interface {
	Usage(ctx context.Context, userID string, now time.Time) (*preferences.Usage, error)
	RecordMessage(ctx context.Context, userID string, now time.Time) (*preferences.Usage, error)
}

// Profile is the public part of a user
type Profile struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

type ProfileResponse struct {
	User Profile `json:"user"`
}

// UpdateProfileRequest fields are optional; blank values are ignored
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,max=320"`
	Password *string `json:"password" binding:"omitempty,max=200"`
}

type UsageResponse struct {
	PlanType  preferences.PlanType `json:"planType"`
	Today     int                  `json:"today"`     // messages used today
	Limit     int                  `json:"limit"`     // daily limit (-1 for unlimited)
	Remaining int                  `json:"remaining"` // remaining messages today (-1 for unlimited)
}

type MessageResponse struct {
	Message string `json:"message"`
}
