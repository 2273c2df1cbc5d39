package users

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/lunos/identity"
	"codeberg.org/lunos/server/lunos/preferences"
)

// GetProfile godoc
// @Summary Get the signed in user's profile
// @Tags users
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/profile [get]
// @Security SessionCookie
func GetProfile(adapter identity.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		user, err := adapter.GetUser(c.Request.Context(), userID)
		if err != nil {
			if stderrors.Is(err, identity.ErrNotFound) {
				errors.NotFound(c, "user")
				return
			}

			errors.InternalError(c, "failed to fetch profile", err)
			return
		}

		c.JSON(http.StatusOK, ProfileResponse{User: toProfile(user)})
	}
}

// UpdateProfile godoc
// @Summary Update the signed in user's profile
// @Description Updates name, email and password. Blank fields are ignored.
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/profile [put]
// @Security SessionCookie
func UpdateProfile(adapter identity.Adapter, hasher auth.PasswordHasher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		update := identity.UserUpdate{ID: userID}
		changed := false

		if name := trimmed(req.Name); name != nil {
			update.Name = name
			changed = true
		}

		if email := trimmed(req.Email); email != nil {
			update.Email = email
			changed = true
		}

		password := ""
		if req.Password != nil {
			password = *req.Password
		}

		if !changed && password == "" {
			errors.BadRequest(c, "No valid fields to update", nil)
			return
		}

		ctx := c.Request.Context()

		user, err := adapter.UpdateUser(ctx, update)
		if err != nil {
			switch {
			case stderrors.Is(err, identity.ErrEmailTaken):
				errors.Conflict(c, "email already in use")
			case stderrors.Is(err, identity.ErrNotFound):
				errors.NotFound(c, "user")
			default:
				errors.InternalError(c, "failed to update profile", err)
			}
			return
		}

		if password != "" {
			if err := setPassword(c, adapter, hasher, userID, password); err != nil {
				errors.InternalError(c, "failed to update password", err)
				return
			}
		}

		c.JSON(http.StatusOK, ProfileResponse{User: toProfile(user)})
	}
}

// DeleteProfile godoc
// @Summary Delete the signed in user's account
// @Description Removes the user with every account, session, conversation and preference
// @Tags users
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/profile [delete]
// @Security SessionCookie
func DeleteProfile(adapter identity.Adapter, sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		if err := adapter.DeleteUser(c.Request.Context(), userID); err != nil {
			errors.InternalError(c, "failed to delete account", err)
			return
		}

		sessions.ClearCookie(c)

		c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
	}
}

// GetUsage godoc
// @Summary Get today's message usage
// @Description Returns the plan, messages used today, the daily limit and what remains
// @Tags users
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
// @Security SessionCookie
func GetUsage(store UsageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		usage, err := store.Usage(c.Request.Context(), userID, time.Now())
		if err != nil {
			errors.InternalError(c, "failed to fetch usage data", err)
			return
		}

		c.JSON(http.StatusOK, toUsageResponse(usage))
	}
}

// RecordUsage godoc
// @Summary Consume one message from today's allowance
// @Tags users
// @Produce json
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/usage [post]
// @Security SessionCookie
func RecordUsage(store UsageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		usage, err := store.RecordMessage(c.Request.Context(), userID, time.Now())
		if err != nil {
			if stderrors.Is(err, preferences.ErrQuotaExceeded) {
				errors.TooManyRequests(c, "daily message limit reached")
				return
			}

			// a jwt session can outlive the account it was issued for
			if stderrors.Is(err, preferences.ErrUserNotFound) {
				errors.Unauthorized(c, "account no longer exists")
				return
			}

			errors.InternalError(c, "failed to record usage", err)
			return
		}

		c.JSON(http.StatusOK, toUsageResponse(usage))
	}
}

// rehashes into the credentials account, creating one for OAuth-only users
func setPassword(c *gin.Context, adapter identity.Adapter, hasher auth.PasswordHasher, userID, password string) error {
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	ctx := c.Request.Context()

	err = adapter.UpdateAccountPassword(ctx, userID, hash)
	if !stderrors.Is(err, identity.ErrNotFound) {
		return err
	}

	_, err = adapter.LinkAccount(ctx, &identity.Account{
		UserID:            userID,
		Type:              identity.ProviderCredentials,
		Provider:          identity.ProviderCredentials,
		ProviderAccountID: userID,
		Password:          &hash,
	})

	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}

	return &v
}

func toProfile(user *identity.User) Profile {
	return Profile{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
	}
}

func toUsageResponse(usage *preferences.Usage) UsageResponse {
	return UsageResponse{
		PlanType:  usage.PlanType,
		Today:     usage.Used,
		Limit:     usage.Limit,
		Remaining: usage.Remaining,
	}
}
