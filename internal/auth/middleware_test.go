package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"expensetracker/internal/user"
)

func protectedEcho(called *string) UserHandler {
	return func(w http.ResponseWriter, r *http.Request, userID string) {
		*called = userID
		w.WriteHeader(http.StatusOK)
	}
}

func middlewareResponse(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&response))
	message, _ := response["message"].(string)
	return message
}

func TestRequireUser_MissingHeader(t *testing.T) {
	service := NewAuthService(&stubUserService{}, NewJWTManager("test-secret"), zap.NewNop())

	var called string
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	w := httptest.NewRecorder()
	service.RequireUser(protectedEcho(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header is required", middlewareResponse(t, w))
	assert.Empty(t, called)
}

func TestRequireUser_BadTokenFormat(t *testing.T) {
	service := NewAuthService(&stubUserService{}, NewJWTManager("test-secret"), zap.NewNop())

	var called string
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	service.RequireUser(protectedEcho(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token format", middlewareResponse(t, w))
}

func TestRequireUser_InvalidToken(t *testing.T) {
	service := NewAuthService(&stubUserService{}, NewJWTManager("test-secret"), zap.NewNop())

	var called string
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	service.RequireUser(protectedEcho(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", middlewareResponse(t, w))
}

func TestRequireUser_DeletedUser(t *testing.T) {
	jwtManager := NewJWTManager("test-secret")
	service := NewAuthService(&stubUserService{err: user.ErrUserNotFound}, jwtManager, zap.NewNop())

	token, err := jwtManager.GenerateAccessJWT("u-1", defaultJWTDuration)
	require.NoError(t, err)

	var called string
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	service.RequireUser(protectedEcho(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, called)
}

func TestRequireUser_Success(t *testing.T) {
	jwtManager := NewJWTManager("test-secret")
	stub := &stubUserService{user: &user.User{ID: "u-1", Username: "alice"}}
	service := NewAuthService(stub, jwtManager, zap.NewNop())

	token, err := jwtManager.GenerateAccessJWT("u-1", defaultJWTDuration)
	require.NoError(t, err)

	var called string
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	service.RequireUser(protectedEcho(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", called, "handler must receive the verified user ID")
}
