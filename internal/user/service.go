package user

import (
	"errors"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
	bcryptCost        = 12
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidFieldLength = errors.New("username or password too short")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInternalError      = errors.New("internal server error")
)

// RegisterRequest is the registration payload. Pointer fields distinguish
// an absent field from an empty one, so presence is checked structurally
// before any field rule runs.
type RegisterRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type Service interface {
	Register(req RegisterRequest) (*User, error)
	GetUserByID(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewUserService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedPasswordBytes), nil
}

// Register validates the payload in a fixed order (presence, field lengths,
// email shape, uniqueness) and creates the account. The repository's unique
// constraint remains the authoritative backstop for concurrent registrations:
// its ErrDuplicateUser is passed through untranslated.
func (s *service) Register(req RegisterRequest) (*User, error) {
	if req.Username == nil || req.Email == nil || req.Password == nil {
		return nil, ErrMissingFields
	}
	username, email, password := *req.Username, *req.Email, *req.Password

	if len(username) < minUsernameLength || len(password) < minPasswordLength {
		return nil, ErrInvalidFieldLength
	}

	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, ErrInvalidEmail
	}

	existingUser, err := s.repo.userExistsByUsernameOrEmail(username, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.Error("could not check for existing user", zap.Error(err))
		return nil, ErrInternalError
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("could not hash password", zap.Error(err))
		return nil, ErrInternalError
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.repo.createUser(user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		s.logger.Error("could not create user", zap.Error(err))
		return nil, ErrInternalError
	}

	return user, nil
}

func (s *service) GetUserByID(id string) (*User, error) {
	return s.repo.getUserByID(id)
}

func (s *service) GetUserByUsername(username string) (*User, error) {
	return s.repo.getUserByUsername(username)
}
