package preferences

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/lunos/preferences"
)

// GetPreferences godoc
// @Summary Get study preferences
// @Description Returns the saved preferences, or the defaults when none were saved
// @Tags preferences
// @Produce json
// @Success 200 {object} PreferencesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/preferences [get]
// @Security SessionCookie
func GetPreferences(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		prefs, err := store.Get(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to fetch preferences", err)
			return
		}

		c.JSON(http.StatusOK, PreferencesResponse{Preferences: prefs})
	}
}

// UpdatePreferences godoc
// @Summary Update study preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} PreferencesResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/preferences [put]
// @Security SessionCookie
func UpdatePreferences(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		var req UpdatePreferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.Subjects == nil && req.PlanType == nil {
			errors.BadRequest(c, "No valid fields to update", nil)
			return
		}

		prefs, err := store.Upsert(c.Request.Context(), userID, preferences.Update{
			Subjects: req.Subjects,
			PlanType: req.PlanType,
		})
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, PreferencesResponse{Preferences: prefs})
	}
}

// CompleteOnboarding godoc
// @Summary Finish onboarding
// @Description Saves the user's name, subjects and plan and marks onboarding complete
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body OnboardingRequest true "Onboarding answers"
// @Success 200 {object} OnboardingResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/onboarding [post]
// @Security SessionCookie
func CompleteOnboarding(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		var req OnboardingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "name, subjects and planType are required", err)
			return
		}

		if req.Subjects == nil {
			errors.BadRequest(c, "name, subjects and planType are required", nil)
			return
		}

		var name *string
		if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
			name = &trimmed
		}

		plan := req.PlanType
		prefs, err := store.CompleteOnboarding(c.Request.Context(), userID, name, preferences.Update{
			Subjects: &req.Subjects,
			PlanType: &plan,
		})
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, OnboardingResponse{Success: true, Preferences: prefs})
	}
}

func respondStoreError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, preferences.ErrInvalidPlan):
		errors.BadRequest(c, "planType must be one of orbit, nova_monthly, nova_yearly", nil)
	case stderrors.Is(err, preferences.ErrUserNotFound):
		errors.Unauthorized(c, "account no longer exists")
	default:
		errors.InternalError(c, "failed to save preferences", err)
	}
}
