package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(manager *SessionManager) *gin.Engine {
	router := gin.New()

	handler := func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, userID)
	}

	router.GET("/required", RequireSession(manager), handler)
	router.GET("/optional", OptionalSession(manager), handler)

	return router
}

func TestRequireSession(t *testing.T) {
	manager, _, user, _ := newTestManager(t, SessionConfig{})
	manager.now = time.Now

	session, err := manager.Create(context.Background(), user)
	require.NoError(t, err)

	router := newProtectedRouter(manager)

	tests := []struct {
		name       string
		setup      func(req *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no token",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
			},
			wantStatus: http.StatusOK,
			wantBody:   user.ID,
		},
		{
			name: "bearer header",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+session.Token)
			},
			wantStatus: http.StatusOK,
			wantBody:   user.ID,
		},
		{
			name: "unknown token",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nope"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed header",
			setup: func(req *http.Request) {
				req.Header.Set("Authorization", "Token "+session.Token)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestOptionalSession(t *testing.T) {
	manager, _, _, _ := newTestManager(t, SessionConfig{})
	router := newProtectedRouter(manager)

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nope"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequireSession_RewritesCookieWhenExtended(t *testing.T) {
	manager, _, user, clock := newTestManager(t, SessionConfig{})

	session, err := manager.Create(context.Background(), user)
	require.NoError(t, err)

	clock.t = clock.t.Add(DefaultSessionUpdateAge + time.Minute)

	router := newProtectedRouter(manager)
	req := httptest.NewRequest(http.MethodGet, "/required", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, session.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, int(DefaultSessionMaxAge.Seconds()), cookies[0].MaxAge)
}
