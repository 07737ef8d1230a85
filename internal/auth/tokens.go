package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/database/models"
	"github.com/ivkov/toolshelf/pkg/crypto"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid token")

// tokenBytes is the entropy of a session token before base64 encoding.
const tokenBytes = 32

// TokenService issues and validates opaque bearer tokens. The plaintext value
// leaves the process exactly once, at issuance; only its SHA-256 is persisted,
// so the token table is useless to an attacker who reads it. Tokens have no
// expiry and remain valid until revoked.
type TokenService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{db: db, now: time.Now}
}

// HashToken returns the hex-encoded SHA-256 of a plaintext token value.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue creates a session token for the user and returns its plaintext value.
func (t *TokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	return t.issue(t.db.WithContext(ctx), userID)
}

func (t *TokenService) issue(tx *gorm.DB, userID uuid.UUID) (string, error) {
	plain, err := crypto.GenerateToken(tokenBytes)
	if err != nil {
		return "", err
	}

	token := models.SessionToken{
		UserID:    userID,
		TokenHash: HashToken(plain),
		Name:      "auth_token",
	}
	if err := tx.Create(&token).Error; err != nil {
		return "", err
	}

	return plain, nil
}

// Authenticate resolves a plaintext bearer token to its owning user.
func (t *TokenService) Authenticate(ctx context.Context, plain string) (*models.User, error) {
	if plain == "" {
		return nil, ErrInvalidToken
	}

	var token models.SessionToken
	err := t.db.WithContext(ctx).
		Preload("User").
		Where("token_hash = ?", HashToken(plain)).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if token.User == nil {
		return nil, ErrInvalidToken
	}

	// Best effort; authentication does not depend on this write.
	now := t.now()
	_ = t.db.WithContext(ctx).Model(&token).Update("last_used_at", now).Error

	return token.User, nil
}

// Revoke invalidates a plaintext token. Revoking an unknown token is a no-op.
func (t *TokenService) Revoke(ctx context.Context, plain string) error {
	return t.db.WithContext(ctx).
		Where("token_hash = ?", HashToken(plain)).
		Delete(&models.SessionToken{}).Error
}
