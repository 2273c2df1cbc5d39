package preferences

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/lunos/identity"
	"codeberg.org/lunos/server/lunos/preferences"
)

// keeps one user's preferences in memory
type fakeStore struct {
	userGone   bool
	prefs      *preferences.Preferences
	onboarded  bool
	onboardAs  *string
	upsertArgs []preferences.Update
}

func (f *fakeStore) Get(context.Context, string) (*preferences.Preferences, error) {
	if f.prefs == nil {
		return preferences.Defaults(), nil
	}

	return f.prefs, nil
}

func (f *fakeStore) Upsert(_ context.Context, _ string, update preferences.Update) (*preferences.Preferences, error) {
	if f.userGone {
		return nil, preferences.ErrUserNotFound
	}

	if update.PlanType != nil && !update.PlanType.Valid() {
		return nil, preferences.ErrInvalidPlan
	}

	f.upsertArgs = append(f.upsertArgs, update)

	prefs := preferences.Defaults()
	if f.prefs != nil {
		prefs = f.prefs
	}

	if update.Subjects != nil {
		prefs.Subjects = *update.Subjects
	}
	if update.PlanType != nil {
		prefs.PlanType = *update.PlanType
	}

	f.prefs = prefs
	return prefs, nil
}

func (f *fakeStore) CompleteOnboarding(ctx context.Context, userID string, name *string, update preferences.Update) (*preferences.Preferences, error) {
	prefs, err := f.Upsert(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	f.onboarded = true
	f.onboardAs = name
	return prefs, nil
}

func newRouter(t *testing.T, store Store) (*gin.Engine, *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	adapter := identity.NewMemoryAdapter()
	sessions := auth.NewSessionManager(adapter, auth.SessionConfig{})

	user, err := adapter.CreateUser(ctx, identity.NewUser{Email: "a@x.com"})
	require.NoError(t, err)
	session, err := sessions.Create(ctx, user)
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), store, sessions)

	return router, &http.Cookie{Name: auth.SessionCookieName, Value: session.Token}
}

func send(router *gin.Engine, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetPreferences_Defaults(t *testing.T) {
	router, cookie := newRouter(t, &fakeStore{})

	w := send(router, cookie, http.MethodGet, "/api/v1/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preferences":{"subjects":[],"planType":"orbit","messagesUsedToday":0,"lastMessageDate":null}}`, w.Body.String())

	w = send(router, nil, http.MethodGet, "/api/v1/preferences", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdatePreferences(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"subjects", `{"subjects":[{"subject":"Biology","examBoard":"AQA"}]}`, http.StatusOK},
		{"plan", `{"planType":"nova_yearly"}`, http.StatusOK},
		{"unknown plan", `{"planType":"galaxy"}`, http.StatusBadRequest},
		{"nothing", `{}`, http.StatusBadRequest},
		{"malformed", `{"subjects":"Biology"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, cookie := newRouter(t, &fakeStore{})

			w := send(router, cookie, http.MethodPut, "/api/v1/preferences", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCompleteOnboarding(t *testing.T) {
	t.Run("saves everything", func(t *testing.T) {
		store := &fakeStore{}
		router, cookie := newRouter(t, store)

		w := send(router, cookie, http.MethodPost, "/api/v1/onboarding",
			`{"name":" Ada ","subjects":[{"subject":"Maths","examBoard":"OCR"}],"planType":"orbit"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.True(t, store.onboarded)
		require.NotNil(t, store.onboardAs)
		assert.Equal(t, "Ada", *store.onboardAs)
		assert.Contains(t, w.Body.String(), `"success":true`)
	})

	for name, body := range map[string]string{
		"missing name":     `{"subjects":[],"planType":"orbit"}`,
		"missing subjects": `{"name":"Ada","planType":"orbit"}`,
		"missing plan":     `{"name":"Ada","subjects":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			router, cookie := newRouter(t, store)

			w := send(router, cookie, http.MethodPost, "/api/v1/onboarding", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, store.onboarded)
		})
	}
}

func TestUpdatePreferences_AccountGone(t *testing.T) {
	router, cookie := newRouter(t, &fakeStore{userGone: true})

	w := send(router, cookie, http.MethodPut, "/api/v1/preferences", `{"planType":"orbit"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(router, cookie, http.MethodPost, "/api/v1/onboarding", `{"name":"Ada","subjects":[],"planType":"orbit"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
