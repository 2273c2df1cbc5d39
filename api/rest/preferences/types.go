package preferences

import (
	"context"

	"codeberg.org/lunos/server/lunos/preferences"
)

type Store interface {
	Get(ctx context.Context, userID string) (*preferences.Preferences, error)
	Upsert(ctx context.Context, userID string, update preferences.Update) (*preferences.Preferences, error)
	CompleteOnboarding(ctx context.Context, userID string, name *string, update preferences.Update) (*preferences.Preferences, error)
}

type PreferencesResponse struct {
	Preferences *preferences.Preferences `json:"preferences"`
}

// UpdatePreferencesRequest fields are optional
type UpdatePreferencesRequest struct {
	Subjects *[]preferences.Subject `json:"subjects"`
	PlanType *preferences.PlanType  `json:"planType"`
}

// OnboardingRequest every field is required
type OnboardingRequest struct {
	Name     string                `json:"name" binding:"required,max=100"`
	Subjects []preferences.Subject `json:"subjects"`
	PlanType preferences.PlanType  `json:"planType" binding:"required"`
}

type OnboardingResponse struct {
	Success     bool                     `json:"success"`
	Preferences *preferences.Preferences `json:"preferences"`
}
