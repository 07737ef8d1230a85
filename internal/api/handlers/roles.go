package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/api/dto"
	"github.com/ivkov/toolshelf/internal/database/models"
	"gorm.io/gorm"
)

type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	var roles []models.Role
	if err := h.db.WithContext(r.Context()).Order("name").Find(&roles).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list roles"})
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	role := models.Role{Name: req.Name}
	if err := h.db.WithContext(r.Context()).Create(&role).Error; err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"name": "Name is already taken"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create role"})
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, ok := h.find(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	role, ok := h.find(w, r, false)
	if !ok {
		return
	}

	var req dto.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	if err := h.db.WithContext(r.Context()).Model(role).Update("name", req.Name).Error; err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"name": "Name is already taken"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update role"})
		return
	}

	writeJSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	role, ok := h.find(w, r, false)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Select("Tools").Delete(role).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete role"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) find(w http.ResponseWriter, r *http.Request, withTools bool) (*models.Role, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid role ID"})
		return nil, false
	}

	query := h.db.WithContext(r.Context())
	if withTools {
		query = query.Preload("Tools")
	}

	var role models.Role
	if err := query.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Role not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load role"})
		return nil, false
	}

	return &role, true
}
