package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/api/dto"
	"github.com/ivkov/toolshelf/internal/api/middleware"
	"github.com/ivkov/toolshelf/internal/database/models"
	"gorm.io/gorm"
)

type ToolHandler struct {
	db *gorm.DB
}

func NewToolHandler(db *gorm.DB) *ToolHandler {
	return &ToolHandler{db: db}
}

// List returns tools with their categories, roles and creator, 20 per page.
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.PaginationParams{
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	params.Normalize()

	query := h.db.WithContext(r.Context()).Model(&models.Tool{})

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if difficulty := r.URL.Query().Get("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list tools"})
		return
	}

	var tools []models.Tool
	err := query.
		Preload("Categories").
		Preload("Roles").
		Preload("User").
		Order("created_at DESC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&tools).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list tools"})
		return
	}

	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       tools,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	})
}

func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.findTool(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	userID := middleware.GetUserID(r.Context())
	tool := models.Tool{
		Name:             req.Name,
		Description:      req.Description,
		DocumentationURL: req.DocumentationURL,
		VideoURL:         req.VideoURL,
		Difficulty:       req.Difficulty,
		Status:           models.ToolStatusPending,
	}
	if userID != uuid.Nil {
		tool.UserID = &userID
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tool).Error; err != nil {
			return err
		}
		if err := h.syncAssociations(tx, &tool, req.CategoryIDs, req.RoleIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create tool"})
		return
	}

	h.reload(r, &tool)
	writeJSON(w, http.StatusCreated, tool)
}

func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.findTool(w, r)
	if !ok {
		return
	}

	var req dto.UpdateToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DocumentationURL != nil {
		updates["documentation_url"] = *req.DocumentationURL
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(tool).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.CategoryIDs != nil {
			if err := h.replaceCategories(tx, tool, *req.CategoryIDs); err != nil {
				return err
			}
		}
		if req.RoleIDs != nil {
			if err := h.replaceRoles(tx, tool, *req.RoleIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update tool"})
		return
	}

	h.reload(r, tool)
	writeJSON(w, http.StatusOK, tool)
}

// UpdateStatus moderates a submission: pending, approved or rejected.
func (h *ToolHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.findTool(w, r)
	if !ok {
		return
	}

	var req dto.UpdateToolStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Message: "Validation failed", Details: errs})
		return
	}

	if err := h.db.WithContext(r.Context()).Model(tool).Update("status", req.Status).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update status"})
		return
	}

	h.reload(r, tool)
	writeJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.findTool(w, r)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Select("Categories", "Roles").Delete(tool).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete tool"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ToolHandler) findTool(w http.ResponseWriter, r *http.Request) (*models.Tool, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid tool ID"})
		return nil, false
	}

	var tool models.Tool
	err = h.db.WithContext(r.Context()).
		Preload("Categories").
		Preload("Roles").
		Preload("User").
		First(&tool, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Tool not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load tool"})
		return nil, false
	}

	return &tool, true
}

func (h *ToolHandler) reload(r *http.Request, tool *models.Tool) {
	_ = h.db.WithContext(r.Context()).
		Preload("Categories").
		Preload("Roles").
		Preload("User").
		First(tool, "id = ?", tool.ID).Error
}

func (h *ToolHandler) syncAssociations(tx *gorm.DB, tool *models.Tool, categoryIDs, roleIDs []string) error {
	if len(categoryIDs) > 0 {
		if err := h.replaceCategories(tx, tool, categoryIDs); err != nil {
			return err
		}
	}
	if len(roleIDs) > 0 {
		if err := h.replaceRoles(tx, tool, roleIDs); err != nil {
			return err
		}
	}
	return nil
}

func (h *ToolHandler) replaceCategories(tx *gorm.DB, tool *models.Tool, ids []string) error {
	var categories []models.Category
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
			return err
		}
	}
	return tx.Model(tool).Association("Categories").Replace(categories)
}

func (h *ToolHandler) replaceRoles(tx *gorm.DB, tool *models.Tool, ids []string) error {
	var roles []models.Role
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&roles).Error; err != nil {
			return err
		}
	}
	return tx.Model(tool).Association("Roles").Replace(roles)
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}
