package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"codeberg.org/lunos/server/lunos/identity"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRegistered    = errors.New("email already registered")
)

// email + password sign-in and sign-up on top of an identity adapter
type CredentialsStrategy struct {
	adapter identity.Adapter
	hasher  PasswordHasher
}

// creates a new credentials strategy
func NewCredentialsStrategy(adapter identity.Adapter, hasher PasswordHasher) *CredentialsStrategy {
	return &CredentialsStrategy{adapter: adapter, hasher: hasher}
}

// authenticates an existing user
//
// Every rejection is a CredentialsSignin error; store failures are wrapped
// as Callback so they are never mistaken for a wrong password.
func (s *CredentialsStrategy) SignIn(ctx context.Context, creds Credentials) (*identity.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, NewError(CredentialsSignin, ErrMissingCredentials)
	}

	user, err := s.adapter.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, NewError(CredentialsSignin, ErrInvalidCredentials)
		}

		return nil, NewError(Callback, fmt.Errorf("failed to look up user: %w", err))
	}

	account, ok := user.Account(identity.ProviderCredentials)
	if !ok || account.Password == nil || *account.Password == "" {
		return nil, NewError(CredentialsSignin, ErrInvalidCredentials)
	}

	if !s.hasher.Verify(creds.Password, *account.Password) {
		return nil, NewError(CredentialsSignin, ErrInvalidCredentials)
	}

	return &user.User, nil
}

// registers a new user with a credentials account
//
// Rejections are EmailCreateAccount errors. The unique email index closes the
// window between the existence check and the insert.
func (s *CredentialsStrategy) SignUp(ctx context.Context, creds Credentials) (*identity.User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, NewError(EmailCreateAccount, ErrMissingCredentials)
	}

	_, err := s.adapter.GetUserByEmail(ctx, creds.Email)
	switch {
	case err == nil:
		return nil, NewError(EmailCreateAccount, ErrEmailRegistered)
	case !errors.Is(err, identity.ErrNotFound):
		return nil, NewError(Callback, fmt.Errorf("failed to look up user: %w", err))
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, NewError(Callback, err)
	}

	newUser := identity.NewUser{
		ID:    uuid.NewString(),
		Email: creds.Email,
		Image: creds.Image,
	}

	if creds.Name != nil {
		if name := strings.TrimSpace(*creds.Name); name != "" {
			newUser.Name = &name
		}
	}

	user, err := s.adapter.CreateUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, NewError(EmailCreateAccount, ErrEmailRegistered)
		}

		return nil, NewError(Callback, fmt.Errorf("failed to create user: %w", err))
	}

	_, err = s.adapter.LinkAccount(ctx, &identity.Account{
		UserID:            user.ID,
		Type:              identity.ProviderCredentials,
		Provider:          identity.ProviderCredentials,
		ProviderAccountID: user.ID,
		Password:          &hash,
	})
	if err != nil {
		// a user without a password account can never sign in, drop it
		if delErr := s.adapter.DeleteUser(ctx, user.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}

		return nil, NewError(Callback, fmt.Errorf("failed to link credentials account: %w", err))
	}

	return user, nil
}
