package dto

import (
	"github.com/ivkov/toolshelf/internal/api/validation"
	"github.com/ivkov/toolshelf/internal/database/models"
)

type CreateToolRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	DocumentationURL string   `json:"documentation_url,omitempty"`
	VideoURL         string   `json:"video_url,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	CategoryIDs      []string `json:"category_ids,omitempty"`
	RoleIDs          []string `json:"role_ids,omitempty"`
}

func (r CreateToolRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 255 {
		errors["name"] = "Name must be at most 255 characters"
	}
	if r.DocumentationURL != "" && !validation.IsValidURL(r.DocumentationURL) {
		errors["documentation_url"] = "Documentation URL must be a valid URL"
	}
	if r.VideoURL != "" && !validation.IsValidURL(r.VideoURL) {
		errors["video_url"] = "Video URL must be a valid URL"
	}
	if r.Difficulty != "" && !models.ValidDifficulty(r.Difficulty) {
		errors["difficulty"] = "Difficulty must be beginner, intermediate or advanced"
	}
	for _, id := range r.CategoryIDs {
		if !validation.IsValidUUID(id) {
			errors["category_ids"] = "Category IDs must be valid UUIDs"
			break
		}
	}
	for _, id := range r.RoleIDs {
		if !validation.IsValidUUID(id) {
			errors["role_ids"] = "Role IDs must be valid UUIDs"
			break
		}
	}

	return errors
}

// UpdateToolRequest uses pointers so "field absent" and "field set to empty"
// can be told apart, mirroring partial updates.
type UpdateToolRequest struct {
	Name             *string   `json:"name,omitempty"`
	Description      *string   `json:"description,omitempty"`
	DocumentationURL *string   `json:"documentation_url,omitempty"`
	VideoURL         *string   `json:"video_url,omitempty"`
	Difficulty       *string   `json:"difficulty,omitempty"`
	CategoryIDs      *[]string `json:"category_ids,omitempty"`
	RoleIDs          *[]string `json:"role_ids,omitempty"`
}

func (r UpdateToolRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil {
		if *r.Name == "" {
			errors["name"] = "Name cannot be empty"
		} else if len(*r.Name) > 255 {
			errors["name"] = "Name must be at most 255 characters"
		}
	}
	if r.DocumentationURL != nil && *r.DocumentationURL != "" && !validation.IsValidURL(*r.DocumentationURL) {
		errors["documentation_url"] = "Documentation URL must be a valid URL"
	}
	if r.VideoURL != nil && *r.VideoURL != "" && !validation.IsValidURL(*r.VideoURL) {
		errors["video_url"] = "Video URL must be a valid URL"
	}
	if r.Difficulty != nil && *r.Difficulty != "" && !models.ValidDifficulty(*r.Difficulty) {
		errors["difficulty"] = "Difficulty must be beginner, intermediate or advanced"
	}
	if r.CategoryIDs != nil {
		for _, id := range *r.CategoryIDs {
			if !validation.IsValidUUID(id) {
				errors["category_ids"] = "Category IDs must be valid UUIDs"
				break
			}
		}
	}
	if r.RoleIDs != nil {
		for _, id := range *r.RoleIDs {
			if !validation.IsValidUUID(id) {
				errors["role_ids"] = "Role IDs must be valid UUIDs"
				break
			}
		}
	}

	return errors
}

type UpdateToolStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateToolStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Status == "" {
		errors["status"] = "Status is required"
	} else if !models.ValidToolStatus(r.Status) {
		errors["status"] = "Status must be pending, approved or rejected"
	}
	return errors
}

type NameRequest struct {
	Name string `json:"name"`
}

func (r NameRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 255 {
		errors["name"] = "Name must be at most 255 characters"
	}
	return errors
}
