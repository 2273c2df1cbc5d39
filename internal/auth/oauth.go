package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markbates/goth"

	"codeberg.org/lunos/server/lunos/identity"
)

// maps a completed provider login onto a local user
type OAuthLinker struct {
	adapter identity.Adapter
}

// creates a new oauth linker
func NewOAuthLinker(adapter identity.Adapter) *OAuthLinker {
	return &OAuthLinker{adapter: adapter}
}

// returns the user owning the provider account, creating one on first login
//
// An email that already belongs to a user without this provider linked is
// rejected with OAuthAccountNotLinked rather than merged.
func (l *OAuthLinker) Resolve(ctx context.Context, gothUser goth.User) (*identity.User, error) {
	if gothUser.Provider == "" || gothUser.UserID == "" {
		return nil, NewError(OAuthCallback, errors.New("provider returned no account id"))
	}

	user, err := l.adapter.GetUserByAccount(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, identity.ErrNotFound) {
		return nil, NewError(Callback, fmt.Errorf("failed to look up account: %w", err))
	}

	email := strings.TrimSpace(gothUser.Email)
	if email == "" {
		return nil, NewError(OAuthCreateAccount, errors.New("provider returned no email"))
	}

	_, err = l.adapter.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, NewError(OAuthAccountNotLinked, nil)
	case !errors.Is(err, identity.ErrNotFound):
		return nil, NewError(Callback, fmt.Errorf("failed to look up user: %w", err))
	}

	newUser := identity.NewUser{Email: email}
	if name := strings.TrimSpace(gothUser.Name); name != "" {
		newUser.Name = &name
	}
	if gothUser.AvatarURL != "" {
		avatar := gothUser.AvatarURL
		newUser.Image = &avatar
	}

	user, err = l.adapter.CreateUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, NewError(OAuthAccountNotLinked, nil)
		}

		return nil, NewError(OAuthCreateAccount, err)
	}

	if _, err := l.adapter.LinkAccount(ctx, accountFromGoth(user.ID, gothUser)); err != nil {
		if delErr := l.adapter.DeleteUser(ctx, user.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}

		return nil, NewError(OAuthCreateAccount, err)
	}

	return user, nil
}

func accountFromGoth(userID string, gothUser goth.User) *identity.Account {
	account := &identity.Account{
		UserID:            userID,
		Type:              identity.AccountTypeOAuth,
		Provider:          gothUser.Provider,
		ProviderAccountID: gothUser.UserID,
		AccessToken:       optional(gothUser.AccessToken),
		RefreshToken:      optional(gothUser.RefreshToken),
		IDToken:           optional(gothUser.IDToken),
	}

	if !gothUser.ExpiresAt.IsZero() {
		expiresAt := gothUser.ExpiresAt.Unix()
		account.ExpiresAt = &expiresAt
	}

	if tokenType, ok := gothUser.RawData["token_type"].(string); ok {
		account.TokenType = optional(tokenType)
	}
	if scope, ok := gothUser.RawData["scope"].(string); ok {
		account.Scope = optional(scope)
	}

	return account
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
