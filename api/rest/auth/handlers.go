package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/internal/logger"
	"codeberg.org/lunos/server/lunos/identity"
)

// page the web client shows sign in failures on
const signInPage = "/account/signin"

// CredentialsSignInHandler godoc
// @Summary Sign in with email and password
// @Description Verifies credentials and starts a session. With callbackUrl the response is a 303 redirect.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 200 {object} UserResponse
// @Success 303 {string} string "Redirect to callbackUrl"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/auth/callback/credentials-signin [post]
func CredentialsSignInHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		_ = c.ShouldBind(&req) //nolint:errcheck // missing fields are rejected by the strategy

		user, err := deps.Credentials.SignIn(c.Request.Context(), auth.Credentials{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondAuthError(c, err, req.CallbackURL)
			return
		}

		startSession(c, deps.Sessions, user, req.CallbackURL, http.StatusOK)
	}
}

// CredentialsSignUpHandler godoc
// @Summary Create an account with email and password
// @Description Registers a user with a credentials account and starts a session
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 201 {object} UserResponse
// @Success 303 {string} string "Redirect to callbackUrl"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/auth/callback/credentials-signup [post]
func CredentialsSignUpHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		_ = c.ShouldBind(&req) //nolint:errcheck // missing fields are rejected by the strategy

		user, err := deps.Credentials.SignUp(c.Request.Context(), auth.Credentials{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Image:    req.Image,
		})
		if err != nil {
			respondAuthError(c, err, req.CallbackURL)
			return
		}

		startSession(c, deps.Sessions, user, req.CallbackURL, http.StatusCreated)
	}
}

// SessionHandler godoc
// @Summary Get the current session
// @Description Returns the signed in user and session expiry, or an empty object
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/auth/session [get]
func SessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := auth.GetSession(c)
		if !ok {
			c.JSON(http.StatusOK, SessionResponse{})
			return
		}

		c.JSON(http.StatusOK, SessionResponse{
			User:    &session.User,
			Expires: &session.Expires,
		})
	}
}

// SignOutHandler godoc
// @Summary Sign out
// @Description Revokes the current session and clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/signout [post]
func SignOutHandler(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.Destroy(c.Request.Context(), auth.TokenFromRequest(c)); err != nil {
			errors.InternalError(c, "failed to sign out", err)
			return
		}

		sessions.ClearCookie(c)

		if target, ok := safeRedirect(c.Query("callbackUrl")); ok {
			c.Redirect(http.StatusSeeOther, target)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
	}
}

// ProvidersHandler godoc
// @Summary List sign in providers
// @Tags auth
// @Produce json
// @Success 200 {object} ProvidersResponse
// @Router /api/v1/auth/providers [get]
func ProvidersHandler(oauthProviders []string) gin.HandlerFunc {
	providers := append([]string{identity.ProviderCredentials}, oauthProviders...)

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ProvidersResponse{Providers: providers})
	}
}

// RequestVerificationHandler godoc
// @Summary Send an email verification link
// @Tags auth
// @Produce json
// @Success 202 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/verify-email/request [post]
// @Security SessionCookie
func RequestVerificationHandler(verification *auth.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := auth.GetSession(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if _, err := verification.Issue(c.Request.Context(), session.User.Email); err != nil {
			respondAuthError(c, err, "")
			return
		}

		c.JSON(http.StatusAccepted, MessageResponse{Message: "verification email sent"})
	}
}

// VerifyEmailHandler godoc
// @Summary Confirm an email verification token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Token"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/verify-email [post]
func VerifyEmailHandler(verification *auth.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyEmailRequest
		if err := c.ShouldBind(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := verification.Confirm(c.Request.Context(), req.Identifier, req.Token)
		if err != nil {
			respondAuthError(c, err, "")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

func startSession(c *gin.Context, sessions *auth.SessionManager, user *identity.User, callbackURL string, status int) {
	session, err := sessions.Create(c.Request.Context(), user)
	if err != nil {
		respondAuthError(c, auth.NewError(auth.Callback, err), callbackURL)
		return
	}

	sessions.SetCookie(c, session)

	if target, ok := safeRedirect(callbackURL); ok {
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	c.JSON(status, UserResponse{User: user})
}

// reports err by category as JSON, or as a redirect to the sign in page when
// the client asked to be redirected
func respondAuthError(c *gin.Context, err error, callbackURL string) {
	category := auth.CategoryOf(err)

	if category == auth.Callback || category == auth.Configuration || category == auth.OAuthCreateAccount {
		logger.FromContext(c.Request.Context()).Error("authentication failed",
			"error", err,
			"category", category,
			"path", c.Request.URL.Path,
		)
	}

	if _, ok := safeRedirect(callbackURL); ok {
		c.Redirect(http.StatusSeeOther, signInPage+"?error="+url.QueryEscape(category.String()))
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(category.Status(), errors.ErrorResponse{
		Error:   category.String(),
		Message: category.Message(),
	})
}

// accepts only same-origin absolute paths
func safeRedirect(raw string) (string, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	return raw, true
}
