package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/lunos/identity"
	"codeberg.org/lunos/server/lunos/preferences"
)

// in-memory usage counter for a single day
type fakeUsage struct {
	plan preferences.PlanType
	used int

	// when set, recording for a user the adapter no longer knows fails like the FK does
	users identity.Adapter
}

func (f *fakeUsage) Usage(_ context.Context, _ string, now time.Time) (*preferences.Usage, error) {
	return usageOf(f.plan, now, f.used), nil
}

func (f *fakeUsage) RecordMessage(ctx context.Context, userID string, now time.Time) (*preferences.Usage, error) {
	if f.users != nil {
		if _, err := f.users.GetUser(ctx, userID); err != nil {
			return nil, preferences.ErrUserNotFound
		}
	}

	limit := f.plan.DailyLimit()
	if limit != preferences.Unlimited && f.used >= limit {
		return nil, preferences.ErrQuotaExceeded
	}

	f.used++
	return usageOf(f.plan, now, f.used), nil
}

func usageOf(plan preferences.PlanType, now time.Time, used int) *preferences.Usage {
	remaining := preferences.Unlimited
	if limit := plan.DailyLimit(); limit != preferences.Unlimited {
		remaining = max(limit-used, 0)
	}

	return &preferences.Usage{PlanType: plan, Date: preferences.Day(now), Used: used, Limit: plan.DailyLimit(), Remaining: remaining}
}

type fixture struct {
	router  *gin.Engine
	adapter *identity.MemoryAdapter
	hasher  auth.PasswordHasher
	user    *identity.User
	cookie  *http.Cookie
	usage   *fakeUsage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	adapter := identity.NewMemoryAdapter()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	sessions := auth.NewSessionManager(adapter, auth.SessionConfig{})

	strategy := auth.NewCredentialsStrategy(adapter, hasher)
	user, err := strategy.SignUp(ctx, auth.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	session, err := sessions.Create(ctx, user)
	require.NoError(t, err)

	f := &fixture{
		adapter: adapter,
		hasher:  hasher,
		user:    user,
		cookie:  &http.Cookie{Name: auth.SessionCookieName, Value: session.Token},
		usage:   &fakeUsage{plan: preferences.PlanOrbit},
	}

	f.router = gin.New()
	RegisterRoutes(f.router.Group("/api/v1"), Dependencies{
		Adapter:  adapter,
		Hasher:   hasher,
		Sessions: sessions,
		Usage:    f.usage,
	})

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(f.cookie)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestProfileRequiresSession(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"id":"`+f.user.ID+`","name":null,"email":"a@x.com","image":null}}`, w.Body.String())
}

func TestUpdateProfile(t *testing.T) {
	t.Run("trims name and email", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPut, "/api/v1/profile", `{"name":"  Ada  ","email":" ada@x.com "}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Ada", *resp.User.Name)
		assert.Equal(t, "ada@x.com", resp.User.Email)
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPut, "/api/v1/profile", `{"name":"   "}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No valid fields to update")
	})

	t.Run("email collision", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.adapter.CreateUser(context.Background(), identity.NewUser{Email: "taken@x.com"})
		require.NoError(t, err)

		w := f.do(http.MethodPut, "/api/v1/profile", `{"email":"taken@x.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("password is rehashed", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodPut, "/api/v1/profile", `{"password":"new-secret"}`)
		require.Equal(t, http.StatusOK, w.Code)

		strategy := auth.NewCredentialsStrategy(f.adapter, f.hasher)
		_, err := strategy.SignIn(context.Background(), auth.Credentials{Email: "a@x.com", Password: "new-secret"})
		assert.NoError(t, err)
		_, err = strategy.SignIn(context.Background(), auth.Credentials{Email: "a@x.com", Password: "secret1"})
		assert.Error(t, err)
	})
}

func TestDeleteProfile(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodDelete, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.adapter.GetUser(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	// the old session died with the user
	w = f.do(http.MethodGet, "/api/v1/profile", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsage(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/usage", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"planType":"orbit","today":0,"limit":3,"remaining":3}`, w.Body.String())

	for range 3 {
		w = f.do(http.MethodPost, "/api/v1/usage", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.JSONEq(t, `{"planType":"orbit","today":3,"limit":3,"remaining":0}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/usage", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRecordUsage_JWTSessionOutlivesAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	adapter := identity.NewMemoryAdapter()
	sessions := auth.NewSessionManager(adapter, auth.SessionConfig{
		Strategy:  config.SessionStrategyJWT,
		JWTSecret: "test-secret",
	})

	user, err := adapter.CreateUser(ctx, identity.NewUser{Email: "a@x.com"})
	require.NoError(t, err)
	session, err := sessions.Create(ctx, user)
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Dependencies{
		Adapter:  adapter,
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Sessions: sessions,
		Usage:    &fakeUsage{plan: preferences.PlanOrbit, users: adapter},
	})

	require.NoError(t, adapter.DeleteUser(ctx, user.ID))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session.Token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
