package category

import (
	"errors"

	"go.uber.org/zap"
)

const (
	minNameLength = 1
	maxNameLength = 50
)

var (
	ErrMissingName       = errors.New("missing name field")
	ErrInvalidNameLength = errors.New("category name must be between 1 and 50 characters")
	ErrCategoryExists    = errors.New("category already exists")
	ErrInternalError     = errors.New("internal server error")
)

// CreateCategoryRequest is the create/rename payload. The pointer field
// distinguishes an absent name from an empty one.
type CreateCategoryRequest struct {
	Name *string `json:"name"`
}

// UpdateCategoryRequest has the same shape as creation: a rename re-runs
// the full name validation.
type UpdateCategoryRequest = CreateCategoryRequest

type Service interface {
	CreateCategory(userID string, req CreateCategoryRequest) (*Category, error)
	ListCategories(userID string) ([]Category, error)
	UpdateCategory(userID string, categoryID int64, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(userID string, categoryID int64) error
	DoesUserCategoryExist(categoryID int64, userID string) (bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewCategoryService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

// validateName applies presence and length rules, in that order.
func validateName(name *string) error {
	if name == nil {
		return ErrMissingName
	}
	if len(*name) < minNameLength || len(*name) > maxNameLength {
		return ErrInvalidNameLength
	}
	return nil
}

// CreateCategory validates the payload (presence, length, per-user name
// uniqueness) and creates the category. The repository's unique constraint
// remains the backstop for concurrent creates with the same name.
func (s *service) CreateCategory(userID string, req CreateCategoryRequest) (*Category, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	exists, err := s.repo.existsByNameAndUser(*req.Name, userID)
	if err != nil {
		s.logger.Error("could not check category uniqueness", zap.Error(err))
		return nil, ErrInternalError
	}
	if exists {
		return nil, ErrCategoryExists
	}

	category := &Category{
		Name:   *req.Name,
		UserID: userID,
	}
	if err := s.repo.createCategory(category); err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			return nil, ErrDuplicateCategory
		}
		s.logger.Error("could not create category", zap.Error(err))
		return nil, ErrInternalError
	}

	return category, nil
}

func (s *service) ListCategories(userID string) ([]Category, error) {
	categories, err := s.repo.findByUser(userID)
	if err != nil {
		s.logger.Error("could not list categories", zap.Error(err))
		return nil, ErrInternalError
	}
	return categories, nil
}

// UpdateCategory renames a category. Rules run in the fixed order: name
// presence, name length, per-user uniqueness, then ownership of the target.
// A rename to any name the user already holds is rejected, including the
// category's own current name.
func (s *service) UpdateCategory(userID string, categoryID int64, req UpdateCategoryRequest) (*Category, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	exists, err := s.repo.existsByNameAndUser(*req.Name, userID)
	if err != nil {
		s.logger.Error("could not check category uniqueness", zap.Error(err))
		return nil, ErrInternalError
	}
	if exists {
		return nil, ErrCategoryExists
	}

	category, err := s.repo.findByIDAndUser(categoryID, userID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("could not find category", zap.Error(err))
		return nil, ErrInternalError
	}

	category.Name = *req.Name
	if err := s.repo.updateName(category); err != nil {
		if errors.Is(err, ErrDuplicateCategory) || errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		s.logger.Error("could not update category", zap.Error(err))
		return nil, ErrInternalError
	}

	return category, nil
}

// DeleteCategory removes a category owned by the caller, refusing while any
// expense still references it. The RESTRICT foreign key backs the guard
// against concurrent expense creation.
func (s *service) DeleteCategory(userID string, categoryID int64) error {
	_, err := s.repo.findByIDAndUser(categoryID, userID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		s.logger.Error("could not find category", zap.Error(err))
		return ErrInternalError
	}

	linked, err := s.repo.hasExpenses(categoryID)
	if err != nil {
		s.logger.Error("could not check category expenses", zap.Error(err))
		return ErrInternalError
	}
	if linked {
		return ErrCategoryInUse
	}

	if err := s.repo.deleteCategory(categoryID, userID); err != nil {
		if errors.Is(err, ErrCategoryInUse) || errors.Is(err, ErrCategoryNotFound) {
			return err
		}
		s.logger.Error("could not delete category", zap.Error(err))
		return ErrInternalError
	}

	return nil
}

func (s *service) DoesUserCategoryExist(categoryID int64, userID string) (bool, error) {
	return s.repo.existsByIDAndUser(categoryID, userID)
}
