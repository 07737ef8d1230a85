package models

import "time"

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	// Role is a free-text label ("owner", "Backend Developer", ...), not a
	// foreign key into the roles catalogue.
	Role string `gorm:"default:'user'" json:"role"`

	// Pending 2FA challenge. Secret holds the age-encrypted one-time code.
	// Both fields are set together by a successful password check and cleared
	// together by a successful code check; never one without the other.
	TwoFactorSecret    *string    `json:"-"`
	TwoFactorExpiresAt *time.Time `json:"-"`

	// Relationships
	Tools         []Tool         `gorm:"foreignKey:UserID" json:"tools,omitempty"`
	SessionTokens []SessionToken `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasPendingChallenge reports whether a 2FA challenge is currently stored.
func (u *User) HasPendingChallenge() bool {
	return u.TwoFactorSecret != nil && u.TwoFactorExpiresAt != nil
}
