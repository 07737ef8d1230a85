package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/api/dto"
	"github.com/ivkov/toolshelf/internal/api/middleware"
	"github.com/ivkov/toolshelf/internal/auth"
)

type AuthHandler struct {
	authService auth.Authenticator
	tokens      *auth.TokenService
}

func NewAuthHandler(authService auth.Authenticator, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"email": "Email is already taken"},
			})
		case errors.Is(err, auth.ErrUnknownRole):
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"role": "Role does not exist"},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Message: "Registration successful",
		User:    resp.User,
		Token:   resp.Token,
	})
}

// Login checks credentials and, on success, starts a two-factor challenge.
// It answers 202 Accepted: the login is not complete until the code is
// verified. Wrong password and unknown email produce the same response so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	challenge, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Login failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TwoFactorChallengeResponse{
		Message: "Two-factor authentication required",
		UserID:  challenge.UserID.String(),
		Email:   challenge.Email,
	})
}

func (h *AuthHandler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyTwoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: "Validation failed",
			Details: map[string]string{"user_id": "User ID must be a valid UUID"},
		})
		return
	}

	resp, err := h.authService.Verify(r.Context(), auth.VerifyInput{
		UserID: userID,
		Code:   req.TwoFactorCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "User not found"})
		case errors.Is(err, auth.ErrChallengeExpired):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Two-factor authentication code expired or not set."})
		case errors.Is(err, auth.ErrInvalidCode):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid two-factor authentication code."})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Verification failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    resp.User,
		Token:   resp.Token,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout revokes the token presented on this request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Logout failed"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
