package models

type Category struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Tools []Tool `gorm:"many2many:category_tool" json:"tools,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}
