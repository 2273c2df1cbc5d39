package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"codeberg.org/lunos/server/lunos/identity"
)

// submitted to the credentials strategies
type Credentials struct {
	Email    string
	Password string
	Name     *string
	Image    *string
}

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// the authenticated state attached to a request
type ActiveSession struct {
	User    identity.User
	Token   string
	Expires time.Time

	// set when the expiry moved forward and the cookie must be rewritten
	Refreshed bool
}
