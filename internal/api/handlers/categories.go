package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/api/dto"
	"github.com/ivkov/toolshelf/internal/database/models"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	db *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := h.db.WithContext(r.Context()).Order("name").Find(&categories).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list categories"})
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	category := models.Category{Name: req.Name}
	if err := h.db.WithContext(r.Context()).Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"name": "Name is already taken"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create category"})
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := h.find(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := h.find(w, r, false)
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

	if err := h.db.WithContext(r.Context()).Model(category).Update("name", req.Name).Error; err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Message: "Validation failed",
				Details: map[string]string{"name": "Name is already taken"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update category"})
		return
	}

	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := h.find(w, r, false)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Select("Tools").Delete(category).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete category"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) find(w http.ResponseWriter, r *http.Request, withTools bool) (*models.Category, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid category ID"})
		return nil, false
	}

	query := h.db.WithContext(r.Context())
	if withTools {
		query = query.Preload("Tools")
	}

	var category models.Category
	if err := query.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Category not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load category"})
		return nil, false
	}

	return &category, true
}

// isUniqueViolation matches unique constraint errors from both postgres and
// the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
