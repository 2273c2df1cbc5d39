package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"codeberg.org/lunos/server/lunos/identity"
)

// lifetime of an email verification token
const VerificationTokenTTL = 24 * time.Hour

// issues and consumes email verification tokens
type VerificationService struct {
	adapter identity.Adapter
	baseURL string
	now     func() time.Time
	deliver func(ctx context.Context, identifier, link string)
}

// creates a new verification service; deliver receives the confirmation link
func NewVerificationService(
	adapter identity.Adapter,
	baseURL string,
	deliver func(ctx context.Context, identifier, link string),
) *VerificationService {
	return &VerificationService{
		adapter: adapter,
		baseURL: baseURL,
		now:     time.Now,
		deliver: deliver,
	}
}

// creates a token for identifier and hands the confirmation link to the deliverer
func (s *VerificationService) Issue(ctx context.Context, identifier string) (*identity.VerificationToken, error) {
	if identifier == "" {
		return nil, NewError(Verification, errors.New("identifier is required"))
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	created, err := s.adapter.CreateVerificationToken(ctx, identity.VerificationToken{
		Identifier: identifier,
		Token:      token,
		Expires:    s.now().Add(VerificationTokenTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}

	if s.deliver != nil {
		query := url.Values{"identifier": {identifier}, "token": {token}}
		s.deliver(ctx, identifier, s.baseURL+"/account/verify-email?"+query.Encode())
	}

	return created, nil
}

// consumes the token and marks the matching user's email verified
func (s *VerificationService) Confirm(ctx context.Context, identifier, token string) (*identity.User, error) {
	if identifier == "" || token == "" {
		return nil, NewError(Verification, errors.New("identifier and token are required"))
	}

	used, err := s.adapter.UseVerificationToken(ctx, identifier, token)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, NewError(Verification, err)
		}

		return nil, fmt.Errorf("failed to use verification token: %w", err)
	}

	now := s.now()
	if !used.Expires.After(now) {
		return nil, NewError(Verification, errors.New("token expired"))
	}

	user, err := s.adapter.GetUserByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, NewError(Verification, err)
		}

		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	verified, err := s.adapter.UpdateUser(ctx, identity.UserUpdate{ID: user.ID, EmailVerified: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	return verified, nil
}
