package dto

import (
	"github.com/ivkov/toolshelf/internal/api/validation"
	"github.com/ivkov/toolshelf/internal/database/models"
)

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) > 255 {
		errors["name"] = "Name must be at most 255 characters"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is not a valid address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	} else if r.Password != r.PasswordConfirmation {
		errors["password"] = "Password confirmation does not match"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is not a valid address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type VerifyTwoFactorRequest struct {
	UserID        string `json:"user_id"`
	TwoFactorCode string `json:"two_factor_code"`
}

func (r VerifyTwoFactorRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.UserID == "" {
		errors["user_id"] = "User ID is required"
	} else if !validation.IsValidUUID(r.UserID) {
		errors["user_id"] = "User ID must be a valid UUID"
	}
	if r.TwoFactorCode == "" {
		errors["two_factor_code"] = "Two-factor code is required"
	} else if len(r.TwoFactorCode) != 6 {
		errors["two_factor_code"] = "Two-factor code must be 6 characters"
	}

	return errors
}

// TwoFactorChallengeResponse is returned with 202 Accepted when the password
// matched and a code was dispatched. It never carries the code.
type TwoFactorChallengeResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}
