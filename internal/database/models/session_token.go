package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionToken is an opaque bearer credential issued after a verified login.
// Only the SHA-256 of the token value is stored; the plaintext is returned to
// the client exactly once at issuance. Tokens carry no expiry and live until
// explicitly revoked. A user may hold any number of them at once.
type SessionToken struct {
	Base
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash  string     `gorm:"uniqueIndex;not null" json:"-"`
	Name       string     `gorm:"default:'auth_token'" json:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SessionToken) TableName() string {
	return "session_tokens"
}
