package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/logger"
	"codeberg.org/lunos/server/lunos/identity"
)

const (
	// cookie carrying the session token or JWT
	SessionCookieName = "lunos.session-token"

	// 32 bytes = 64 hex chars
	SessionTokenBytes = 32

	DefaultSessionMaxAge    = 30 * 24 * time.Hour
	DefaultSessionUpdateAge = 24 * time.Hour
)

// returned by Resolve when the request carries no usable session
var ErrNoSession = errors.New("no active session")

type SessionConfig struct {
	Strategy  string
	MaxAge    time.Duration
	UpdateAge time.Duration
	JWTSecret string
	Secure    bool
}

// issues, resolves and revokes sessions for either strategy
type SessionManager struct {
	adapter identity.Adapter
	cfg     SessionConfig
	now     func() time.Time
}

// creates a new session manager, filling in default lifetimes
func NewSessionManager(adapter identity.Adapter, cfg SessionConfig) *SessionManager {
	if cfg.Strategy == "" {
		cfg.Strategy = config.SessionStrategyDatabase
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultSessionMaxAge
	}
	if cfg.UpdateAge <= 0 {
		cfg.UpdateAge = DefaultSessionUpdateAge
	}

	return &SessionManager{
		adapter: adapter,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (m *SessionManager) Strategy() string {
	return m.cfg.Strategy
}

// starts a session for user and returns the token to hand to the client
func (m *SessionManager) Create(ctx context.Context, user *identity.User) (*ActiveSession, error) {
	now := m.now()
	expires := now.Add(m.cfg.MaxAge)

	if m.cfg.Strategy == config.SessionStrategyJWT {
		token, err := GenerateJWT(m.cfg.JWTSecret, claimsFor(user), m.cfg.MaxAge, now)
		if err != nil {
			return nil, fmt.Errorf("failed to sign session token: %w", err)
		}

		return &ActiveSession{User: *user, Token: token, Expires: expires, Refreshed: true}, nil
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session, err := m.adapter.CreateSession(ctx, identity.Session{
		SessionToken: token,
		UserID:       user.ID,
		Expires:      expires,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ActiveSession{User: *user, Token: token, Expires: session.Expires, Refreshed: true}, nil
}

// turns a token into the active session, extending it when it is due
func (m *SessionManager) Resolve(ctx context.Context, token string) (*ActiveSession, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	if m.cfg.Strategy == config.SessionStrategyJWT {
		return m.resolveJWT(token)
	}

	session, user, err := m.adapter.GetSessionAndUser(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrNoSession
		}

		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	now := m.now()

	if !session.Expires.After(now) {
		if err := m.adapter.DeleteSession(ctx, token); err != nil {
			logger.FromContext(ctx).Warn("failed to delete expired session", "error", err)
		}

		return nil, ErrNoSession
	}

	active := &ActiveSession{User: *user, Token: token, Expires: session.Expires}

	// extend once updateAge has passed since the last extension
	if session.Expires.Add(-m.cfg.MaxAge).Add(m.cfg.UpdateAge).Before(now) {
		updated, err := m.adapter.UpdateSession(ctx, identity.Session{
			SessionToken: token,
			Expires:      now.Add(m.cfg.MaxAge),
		})

		switch {
		case err == nil:
			active.Expires = updated.Expires
			active.Refreshed = true
		case errors.Is(err, identity.ErrNotFound):
			return nil, ErrNoSession
		default:
			logger.FromContext(ctx).Warn("failed to extend session", "error", err, "user_id", user.ID)
		}
	}

	return active, nil
}

func (m *SessionManager) resolveJWT(token string) (*ActiveSession, error) {
	claims, err := ValidateJWT(m.cfg.JWTSecret, token)
	if err != nil {
		return nil, ErrNoSession
	}

	user := identity.User{ID: claims.UserID, Email: claims.Email}
	if claims.Name != "" {
		name := claims.Name
		user.Name = &name
	}

	active := &ActiveSession{User: user, Token: token, Expires: claims.ExpiresAt.Time}

	now := m.now()
	if claims.IssuedAt != nil && claims.IssuedAt.Add(m.cfg.UpdateAge).Before(now) {
		refreshed, err := GenerateJWT(m.cfg.JWTSecret, claimsFor(&user), m.cfg.MaxAge, now)
		if err == nil {
			active.Token = refreshed
			active.Expires = now.Add(m.cfg.MaxAge)
			active.Refreshed = true
		}
	}

	return active, nil
}

// revokes a session; JWT sessions only lose their cookie
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" || m.cfg.Strategy == config.SessionStrategyJWT {
		return nil
	}

	return m.adapter.DeleteSession(ctx, token)
}

// writes the session cookie
func (m *SessionManager) SetCookie(c *gin.Context, session *ActiveSession) {
	maxAge := int(session.Expires.Sub(m.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, session.Token, maxAge, "/", "", m.cfg.Secure, true)
}

// expires the session cookie
func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.cfg.Secure, true)
}

// reads the session token from the cookie, falling back to a bearer header
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// returns a random 64 character hex token
func GenerateSessionToken() (string, error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	return hex.EncodeToString(tokenBytes), nil
}

func claimsFor(user *identity.User) Claims {
	claims := Claims{UserID: user.ID, Email: user.Email}
	if user.Name != nil {
		claims.Name = *user.Name
	}

	return claims
}
