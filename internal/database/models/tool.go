package models

import "github.com/google/uuid"

// Tool difficulty levels
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Tool moderation statuses
const (
	ToolStatusPending  = "pending"
	ToolStatusApproved = "approved"
	ToolStatusRejected = "rejected"
)

type Tool struct {
	Base
	Name             string     `gorm:"not null" json:"name"`
	Description      string     `json:"description"`
	DocumentationURL string     `json:"documentation_url"`
	VideoURL         string     `json:"video_url"`
	Difficulty       string     `json:"difficulty"` // beginner, intermediate, advanced
	Status           string     `gorm:"default:'pending';index" json:"status"`
	UserID           *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`

	// Relationships
	Categories []Category `gorm:"many2many:category_tool;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Roles      []Role     `gorm:"many2many:role_tool;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func (Tool) TableName() string {
	return "tools"
}

// ValidDifficulty reports whether d is one of the recognized difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ValidToolStatus reports whether s is one of the recognized moderation states.
func ValidToolStatus(s string) bool {
	switch s {
	case ToolStatusPending, ToolStatusApproved, ToolStatusRejected:
		return true
	}
	return false
}
