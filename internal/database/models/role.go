package models

// Role is a catalogue entry ("Backend Developer", "QA Engineer", ...) that
// tools are tagged with. Distinct from User.Role, which is a plain string.
type Role struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Tools []Tool `gorm:"many2many:role_tool" json:"tools,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}
