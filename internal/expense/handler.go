package expense

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

func NewExpenseHandler(
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

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		h.respondError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, ErrNoData):
		h.respondError(w, http.StatusBadRequest, "No data provided")
	case errors.Is(err, ErrInvalidAmount):
		h.respondError(w, http.StatusBadRequest, "Amount must be a positive number")
	case errors.Is(err, ErrDescriptionTooLong):
		h.respondError(w, http.StatusBadRequest, "Description too long (max 200 characters)")
	case errors.Is(err, ErrInvalidDate):
		h.respondError(w, http.StatusBadRequest, "Invalid date format")
	case errors.Is(err, ErrInvalidCategory):
		h.respondError(w, http.StatusBadRequest, "Invalid category")
	case errors.Is(err, ErrExpenseNotFound):
		h.respondError(w, http.StatusNotFound, "Expense not found")
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) HandleCreateExpense(w http.ResponseWriter, r *http.Request, userID string) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.service.CreateExpense(userID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Expense created",
		"expense": expense,
	})
}

func (h *Handler) HandleListExpenses(w http.ResponseWriter, r *http.Request, userID string) {
	expenses, err := h.service.ListExpenses(userID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, expenses)
}

func (h *Handler) HandleGetExpense(w http.ResponseWriter, r *http.Request, userID string) {
	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	expense, err := h.service.GetExpense(userID, expenseID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, expense)
}

func (h *Handler) HandleUpdateExpense(w http.ResponseWriter, r *http.Request, userID string) {
	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.service.UpdateExpense(userID, expenseID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Expense updated",
		"expense": expense,
	})
}

func (h *Handler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request, userID string) {
	expenseID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	if err := h.service.DeleteExpense(userID, expenseID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Expense deleted",
	})
}
