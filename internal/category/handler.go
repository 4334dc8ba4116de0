package category

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

type Handler struct {
	service      Service
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewCategoryHandler(
	service Service,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &Handler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.CreateCategory(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName):
			h.respondError(w, http.StatusBadRequest, "Missing name field")
		case errors.Is(err, ErrInvalidNameLength):
			h.respondError(w, http.StatusBadRequest, "Category name must be between 1 and 50 characters")
		case errors.Is(err, ErrCategoryExists):
			h.respondError(w, http.StatusBadRequest, "Category already exists")
		case errors.Is(err, ErrDuplicateCategory):
			h.respondError(w, http.StatusBadRequest, "Database error: Category name already exists")
		default:
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created",
		"category": category,
	})
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request, userID string) {
	categories, err := h.service.ListCategories(userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	categoryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(userID, categoryID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName):
			h.respondError(w, http.StatusBadRequest, "Missing name field")
		case errors.Is(err, ErrInvalidNameLength):
			h.respondError(w, http.StatusBadRequest, "Category name must be between 1 and 50 characters")
		case errors.Is(err, ErrCategoryExists):
			h.respondError(w, http.StatusBadRequest, "Category name already exists")
		case errors.Is(err, ErrDuplicateCategory):
			h.respondError(w, http.StatusBadRequest, "Database error: Category name already exists")
		case errors.Is(err, ErrCategoryNotFound):
			h.respondError(w, http.StatusNotFound, "Category not found")
		default:
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category updated",
		"category": category,
	})
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request, userID string) {
	categoryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.service.DeleteCategory(userID, categoryID); err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			h.respondError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ErrCategoryInUse):
			h.respondError(w, http.StatusBadRequest, "Cannot delete category with associated expenses")
		default:
			h.respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Category deleted",
	})
}
