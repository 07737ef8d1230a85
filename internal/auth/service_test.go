package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/auth"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with default role and issues token", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		resp, err := ts.Auth.Register(ctx, auth.RegisterInput{
			Name:     "Ivan Petrov",
			Email:    "ivan@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "user", resp.User.Role)
		assert.Equal(t, "ivan@example.com", resp.User.Email)
		assert.NotEqual(t, uuid.Nil, resp.User.ID)

		// The stored hash must not be the plaintext.
		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "email = ?", "ivan@example.com").Error)
		assert.NotEqual(t, "secret-password", stored.PasswordHash)
		assert.True(t, auth.CheckPassword("secret-password", stored.PasswordHash))

		// The returned token must resolve back to the new user.
		user, err := ts.Tokens.Authenticate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, user.ID)
	})

	t.Run("accepts a role that exists in the catalogue", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		testutil.CreateTestRole(t, ts.DB, "Backend Developer")

		resp, err := ts.Auth.Register(ctx, auth.RegisterInput{
			Name:     "Maria",
			Email:    "maria@example.com",
			Password: "secret-password",
			Role:     "Backend Developer",
		})
		require.NoError(t, err)
		assert.Equal(t, "Backend Developer", resp.User.Role)
	})

	t.Run("rejects a role that does not exist", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		_, err := ts.Auth.Register(ctx, auth.RegisterInput{
			Name:     "Maria",
			Email:    "maria@example.com",
			Password: "secret-password",
			Role:     "Astronaut",
		})
		assert.ErrorIs(t, err, auth.ErrUnknownRole)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		_, err := ts.Auth.Register(ctx, auth.RegisterInput{
			Name:     "First",
			Email:    "dup@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)

		_, err = ts.Auth.Register(ctx, auth.RegisterInput{
			Name:     "Second",
			Email:    "dup@example.com",
			Password: "other-password",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the same error for unknown email and wrong password", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")

		_, errUnknown := ts.Auth.Login(ctx, auth.LoginInput{
			Email:    "nobody@example.com",
			Password: testutil.TestPassword,
		})
		_, errWrongPass := ts.Auth.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "wrong-password",
		})

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, auth.ErrInvalidCredentials)
	})

	t.Run("creates a challenge and dispatches a six digit code", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")

		challenge, err := ts.Auth.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: testutil.TestPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, challenge.UserID)
		assert.Equal(t, user.Email, challenge.Email)

		require.Equal(t, 1, ts.Notifier.Sent)
		assert.Equal(t, user.Email, ts.Notifier.LastEmail)
		assert.Len(t, ts.Notifier.LastCode, 6)

		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
		require.NotNil(t, stored.TwoFactorSecret)
		require.NotNil(t, stored.TwoFactorExpiresAt)
		assert.True(t, stored.TwoFactorExpiresAt.Equal(ts.Clock.Now().Add(10*time.Minute)))

		// The persisted secret is the encrypted form of the delivered code.
		code, err := ts.Encryptor.DecryptString(*stored.TwoFactorSecret)
		require.NoError(t, err)
		assert.Equal(t, ts.Notifier.LastCode, code)
		assert.NotEqual(t, code, *stored.TwoFactorSecret)
	})

	t.Run("a repeat login overwrites the pending challenge", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		input := auth.LoginInput{Email: user.Email, Password: testutil.TestPassword}

		_, err := ts.Auth.Login(ctx, input)
		require.NoError(t, err)
		var first models.User
		require.NoError(t, ts.DB.First(&first, "id = ?", user.ID).Error)

		ts.Clock.Advance(3 * time.Minute)
		_, err = ts.Auth.Login(ctx, input)
		require.NoError(t, err)

		var second models.User
		require.NoError(t, ts.DB.First(&second, "id = ?", user.ID).Error)
		assert.Equal(t, 2, ts.Notifier.Sent)
		assert.NotEqual(t, *first.TwoFactorSecret, *second.TwoFactorSecret)
		assert.True(t, second.TwoFactorExpiresAt.After(*first.TwoFactorExpiresAt))

		// Only the latest code verifies.
		_, err = ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: ts.Notifier.LastCode})
		assert.NoError(t, err)
	})

	t.Run("a delivery failure does not fail the login", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		ts.Notifier.Err = errors.New("smtp unreachable")

		challenge, err := ts.Auth.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: testutil.TestPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, challenge.UserID)

		// The challenge is still persisted and a retried login issues a new one.
		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
		assert.True(t, stored.HasPendingChallenge())
	})
}

func TestService_Verify(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, ts *testutil.TestSetup, user *models.User) string {
		t.Helper()
		_, err := ts.Auth.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
		require.NoError(t, err)
		return ts.Notifier.LastCode
	}

	t.Run("a correct code consumes the challenge and issues a token", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		code := login(t, ts, user)

		resp, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)

		authed, err := ts.Tokens.Authenticate(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)

		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
		assert.Nil(t, stored.TwoFactorSecret)
		assert.Nil(t, stored.TwoFactorExpiresAt)
	})

	t.Run("a consumed code cannot be replayed", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		code := login(t, ts, user)

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		require.NoError(t, err)

		_, err = ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		assert.ErrorIs(t, err, auth.ErrChallengeExpired)
	})

	t.Run("a wrong code leaves the challenge intact", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		code := login(t, ts, user)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: wrong})
		assert.ErrorIs(t, err, auth.ErrInvalidCode)

		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
		assert.True(t, stored.HasPendingChallenge())

		// The correct code still works afterwards.
		_, err = ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		assert.NoError(t, err)
	})

	t.Run("an expired challenge is rejected and cleared", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		code := login(t, ts, user)

		ts.Clock.Advance(10*time.Minute + time.Second)

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		assert.ErrorIs(t, err, auth.ErrChallengeExpired)

		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
		assert.Nil(t, stored.TwoFactorSecret)
		assert.Nil(t, stored.TwoFactorExpiresAt)
	})

	t.Run("a code at the expiry boundary is still valid", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")
		code := login(t, ts, user)

		ts.Clock.Advance(10 * time.Minute)

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: code})
		assert.NoError(t, err)
	})

	t.Run("a user without a challenge gets the expired error", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		user := testutil.CreateTestUser(t, ts.DB, "user")

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: user.ID, Code: "123456"})
		assert.ErrorIs(t, err, auth.ErrChallengeExpired)
	})

	t.Run("an unknown user is reported as not found", func(t *testing.T) {
		ts := testutil.NewTestContext(t)
		defer ts.Cleanup()

		_, err := ts.Auth.Verify(ctx, auth.VerifyInput{UserID: uuid.New(), Code: "123456"})
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
