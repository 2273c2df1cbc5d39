package auth

import (
	"context"
	"testing"
	"time"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/lunos/server/lunos/identity"
)

func TestOAuthLinker_Resolve(t *testing.T) {
	ctx := context.Background()
	adapter := identity.NewMemoryAdapter()
	linker := NewOAuthLinker(adapter)

	gothUser := goth.User{
		Provider:     "google",
		UserID:       "g-42",
		Email:        "ada@example.com",
		Name:         "Ada Lovelace",
		AvatarURL:    "https://example.com/ada.png",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Unix(1900000000, 0),
		RawData:      map[string]any{"token_type": "Bearer"},
	}

	created, err := linker.Resolve(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", *created.Name)
	assert.Equal(t, "https://example.com/ada.png", *created.Image)

	t.Run("second login returns the same user", func(t *testing.T) {
		again, err := linker.Resolve(ctx, gothUser)
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
	})

	t.Run("tokens are stored on the account", func(t *testing.T) {
		stored, err := adapter.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)

		account, ok := stored.Account("google")
		require.True(t, ok)
		assert.Equal(t, identity.AccountTypeOAuth, account.Type)
		assert.Equal(t, "access", *account.AccessToken)
		assert.Equal(t, int64(1900000000), *account.ExpiresAt)
		assert.Equal(t, "Bearer", *account.TokenType)
		assert.Nil(t, account.IDToken)
	})

	t.Run("same email from another provider is not linked", func(t *testing.T) {
		_, err := linker.Resolve(ctx, goth.User{Provider: "github", UserID: "gh-1", Email: "ada@example.com"})
		assert.Equal(t, OAuthAccountNotLinked, CategoryOf(err))
	})

	t.Run("missing account id", func(t *testing.T) {
		_, err := linker.Resolve(ctx, goth.User{Provider: "github", Email: "x@example.com"})
		assert.Equal(t, OAuthCallback, CategoryOf(err))
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := linker.Resolve(ctx, goth.User{Provider: "github", UserID: "gh-2"})
		assert.Equal(t, OAuthCreateAccount, CategoryOf(err))
	})
}
