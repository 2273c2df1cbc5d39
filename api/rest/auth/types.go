package auth

import (
	"time"

	"codeberg.org/lunos/server/lunos/identity"
)

// CredentialsRequest is accepted as JSON or form fields
type CredentialsRequest struct {
	Email       string  `json:"email" form:"email"`
	Password    string  `json:"password" form:"password"`
	Name        *string `json:"name" form:"name"`
	Image       *string `json:"image" form:"image"`
	CallbackURL string  `json:"callbackUrl" form:"callbackUrl"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *identity.User `json:"user"`
}

// SessionResponse describes the current session; empty when signed out
type SessionResponse struct {
	User    *identity.User `json:"user,omitempty"`
	Expires *time.Time     `json:"expires,omitempty"`
}

// ProvidersResponse lists the sign in methods available
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// VerifyEmailRequest confirms a verification token
type VerifyEmailRequest struct {
	Identifier string `json:"identifier" form:"identifier" binding:"required"`
	Token      string `json:"token" form:"token" binding:"required"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
