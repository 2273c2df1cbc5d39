package auth

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"codeberg.org/lunos/server/internal/auth"
)

// short-lived cookie remembering where to send the user after the provider
const callbackCookieName = "lunos.callback-url"

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication flow with specified provider
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Param callbackUrl query string false "Path to return to after sign in"
// @Success 307 {string} string "Redirect to OAuth provider"
// @Failure 303 {string} string "Redirect to the sign in page with an error"
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler(providers []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(providers, provider) {
			respondOAuthError(c, auth.NewError(auth.OAuthSignin, nil))
			return
		}

		setProviderQuery(c, provider)

		authURL, err := gothic.GetAuthURL(c.Writer, c.Request)
		if err != nil {
			respondOAuthError(c, auth.NewError(auth.OAuthSignin, err))
			return
		}

		if target, ok := safeRedirect(c.Query("callbackUrl")); ok {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(callbackCookieName, target, 300, "/", "", c.Request.TLS != nil, true)
		}

		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Starts a session and redirects back to the app
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 303 {string} string "Redirect to the app"
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(deps.Providers, provider) {
			respondOAuthError(c, auth.NewError(auth.OAuthCallback, nil))
			return
		}

		setProviderQuery(c, provider)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			respondOAuthError(c, auth.NewError(auth.OAuthCallback, err))
			return
		}

		user, err := deps.OAuth.Resolve(c.Request.Context(), gothUser)
		if err != nil {
			respondOAuthError(c, err)
			return
		}

		session, err := deps.Sessions.Create(c.Request.Context(), user)
		if err != nil {
			respondOAuthError(c, auth.NewError(auth.Callback, err))
			return
		}

		deps.Sessions.SetCookie(c, session)

		target := "/"
		if saved, err := c.Cookie(callbackCookieName); err == nil {
			if safe, ok := safeRedirect(saved); ok {
				target = safe
			}
		}

		c.SetCookie(callbackCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
		c.Redirect(http.StatusSeeOther, target)
	}
}

// browser flows always land back on the sign in page
func respondOAuthError(c *gin.Context, err error) {
	respondAuthError(c, err, signInPage)
}

// gothic reads the provider name from the query
func setProviderQuery(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}
