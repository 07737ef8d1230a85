package auth_test

import (
	"context"
	"testing"

	"github.com/ivkov/toolshelf/internal/auth"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("an issued token resolves to its user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		plain, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, plain)

		authed, err := tokens.Authenticate(ctx, plain)
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
		assert.Equal(t, user.Email, authed.Email)
	})

	t.Run("only the hash is persisted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		plain, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)

		var stored models.SessionToken
		require.NoError(t, db.First(&stored, "user_id = ?", user.ID).Error)
		assert.NotEqual(t, plain, stored.TokenHash)
		assert.Equal(t, auth.HashToken(plain), stored.TokenHash)
	})

	t.Run("each issuance produces a distinct token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		first, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)
		second, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		// Both remain valid at the same time.
		_, err = tokens.Authenticate(ctx, first)
		assert.NoError(t, err)
		_, err = tokens.Authenticate(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)

		_, err := tokens.Authenticate(ctx, "no-such-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)

		_, err := tokens.Authenticate(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("updates last used on authentication", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		plain, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)

		_, err = tokens.Authenticate(ctx, plain)
		require.NoError(t, err)

		var stored models.SessionToken
		require.NoError(t, db.First(&stored, "user_id = ?", user.ID).Error)
		assert.NotNil(t, stored.LastUsedAt)
	})
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("a revoked token no longer authenticates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		plain, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)

		require.NoError(t, tokens.Revoke(ctx, plain))

		_, err = tokens.Authenticate(ctx, plain)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("revoking one token leaves the others valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)
		user := testutil.CreateTestUser(t, db, "user")

		first, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)
		second, err := tokens.Issue(ctx, user.ID)
		require.NoError(t, err)

		require.NoError(t, tokens.Revoke(ctx, first))

		_, err = tokens.Authenticate(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("revoking an unknown token is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tokens := auth.NewTokenService(db)

		assert.NoError(t, tokens.Revoke(ctx, "no-such-token"))
	})
}
