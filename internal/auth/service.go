package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/user"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal server error")
)

// LoginRequest carries the login payload. Pointer fields distinguish absent
// fields from empty ones.
type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type Service interface {
	Login(req LoginRequest) (*user.User, string, error)
	RequireUser(next UserHandler) http.Handler
}

type service struct {
	userService user.Service
	jwtManager  JWTManagerInterface
	logger      *zap.Logger
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface, logger *zap.Logger) Service {
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// Login verifies the credentials and issues a signed access token bound to
// the user's identifier. An unknown username and a password mismatch are
// indistinguishable to the caller.
func (s *service) Login(req LoginRequest) (*user.User, string, error) {
	if req.Username == nil || req.Password == nil {
		return nil, "", ErrMissingFields
	}

	existingUser, err := s.userService.GetUserByUsername(*req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("could not look up user for login", zap.Error(err))
		return nil, "", ErrInternalError
	}

	err = bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(*req.Password))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		s.logger.Error("could not generate access token", zap.Error(err))
		return nil, "", ErrInternalError
	}

	return existingUser, accessToken, nil
}
