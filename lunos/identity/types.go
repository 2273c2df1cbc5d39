package identity

import (
	"context"
	"errors"
	"time"
)

// provider id used for email + password accounts
const ProviderCredentials = "credentials"

// account type stored for OAuth-linked accounts
const AccountTypeOAuth = "oauth"

var (
	// returned by every lookup that matches no row
	ErrNotFound = errors.New("identity: not found")

	// the email already belongs to another user
	ErrEmailTaken = errors.New("identity: email already registered")

	// the (provider, providerAccountId) pair is linked already, or the user
	// already has a credentials account
	ErrAccountExists = errors.New("identity: account already linked")

	// any other key collision: a user id, session token or verification token
	ErrDuplicate = errors.New("identity: duplicate key")
)

// translates identity operations into store reads and writes
//
// Lookups return ErrNotFound when nothing matches and a wrapped store error
// otherwise, so callers can always tell "absent" from "broken".
type Adapter interface {
	CreateUser(ctx context.Context, user NewUser) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*UserWithAccounts, error)
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*User, error)
	UpdateUser(ctx context.Context, update UserUpdate) (*User, error)

	// deletes are by key and succeed whether or not a row matched
	DeleteUser(ctx context.Context, id string) error

	LinkAccount(ctx context.Context, account *Account) (*Account, error)
	UnlinkAccount(ctx context.Context, provider, providerAccountID string) error
	UpdateAccountPassword(ctx context.Context, userID, passwordHash string) error

	CreateSession(ctx context.Context, session Session) (*Session, error)
	GetSessionAndUser(ctx context.Context, sessionToken string) (*Session, *User, error)
	UpdateSession(ctx context.Context, session Session) (*Session, error)
	DeleteSession(ctx context.Context, sessionToken string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	CreateVerificationToken(ctx context.Context, token VerificationToken) (*VerificationToken, error)
	UseVerificationToken(ctx context.Context, identifier, token string) (*VerificationToken, error)
}

// represents an identity record
type User struct {
	ID                  string     `json:"id"`
	Name                *string    `json:"name"`
	Email               string     `json:"email"`
	EmailVerified       *time.Time `json:"emailVerified"`
	Image               *string    `json:"image"`
	OnboardingCompleted bool       `json:"onboardingCompleted"`
}

// a user together with every authentication method linked to it
type UserWithAccounts struct {
	User
	Accounts []Account `json:"-"`
}

// returns the first linked account for provider, if any
func (u *UserWithAccounts) Account(provider string) (*Account, bool) {
	for i := range u.Accounts {
		if u.Accounts[i].Provider == provider {
			return &u.Accounts[i], true
		}
	}

	return nil, false
}

// contains the profile fields used when creating a user; an empty ID is generated
type NewUser struct {
	ID            string
	Name          *string
	Email         string
	EmailVerified *time.Time
	Image         *string
}

// nil fields are left untouched
type UserUpdate struct {
	ID                  string
	Name                *string
	Email               *string
	EmailVerified       *time.Time
	Image               *string
	OnboardingCompleted *bool
}

// a linked authentication method for a user
type Account struct {
	UserID            string  `json:"userId"`
	Type              string  `json:"type"`
	Provider          string  `json:"provider"`
	ProviderAccountID string  `json:"providerAccountId"`
	AccessToken       *string `json:"-"`
	ExpiresAt         *int64  `json:"-"`
	RefreshToken      *string `json:"-"`
	IDToken           *string `json:"-"`
	Scope             *string `json:"-"`
	SessionState      *string `json:"-"`
	TokenType         *string `json:"-"`
	Password          *string `json:"-"`
}

// server-side proof of authentication
type Session struct {
	SessionToken string    `json:"sessionToken"`
	UserID       string    `json:"userId"`
	Expires      time.Time `json:"expires"`
}

// single-use token proving control of an identifier
type VerificationToken struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"token"`
	Expires    time.Time `json:"expires"`
}
