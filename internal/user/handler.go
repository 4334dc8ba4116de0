package user

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"message": message,
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			respondError(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, ErrInvalidFieldLength):
			respondError(w, http.StatusBadRequest, "Username must be at least 3 characters and password at least 6 characters")
		case errors.Is(err, ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, ErrUserAlreadyExists):
			respondError(w, http.StatusBadRequest, "Username or email already exists")
		case errors.Is(err, ErrDuplicateUser):
			respondError(w, http.StatusBadRequest, "Database error: Username or email already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}
