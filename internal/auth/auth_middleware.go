package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/user"
)

// UserHandler is a protected endpoint. The authenticated user's identifier
// is threaded in as an explicit argument: it is resolved exactly once, here,
// and handlers never reach into ambient request state for it.
type UserHandler func(w http.ResponseWriter, r *http.Request, userID string)

// RequireUser authenticates the bearer token on the standard Authorization
// header and invokes next with the verified user identifier. Missing or
// invalid credentials yield 401 uniformly.
func (s *service) RequireUser(next UserHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		userID, err := s.jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		_, err = s.userService.GetUserByID(userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next(w, r, userID)
	})
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
	})
}
