package expense

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

const maxDescriptionLength = 200

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrNoData             = errors.New("no data provided")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date format")
	ErrInternalError      = errors.New("internal server error")
)

// Date input shapes accepted from callers. Output is always RFC 3339.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreateExpenseRequest is the create payload. Amount stays raw so that a
// non-numeric value (a boolean, a string) is rejected as an invalid amount
// rather than as an undecodable body; the pointer fields distinguish absent
// from empty.
type CreateExpenseRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Description *string         `json:"description"`
	CategoryID  *int64          `json:"category_id"`
	Date        *string         `json:"date"`
}

// UpdateExpenseRequest has the same shape as creation; every field is
// optional and absent fields are left unchanged.
type UpdateExpenseRequest = CreateExpenseRequest

// CategoryService is the slice of the category service the expense rules
// need: resolving whether a referenced category belongs to the caller.
type CategoryService interface {
	DoesUserCategoryExist(categoryID int64, userID string) (bool, error)
}

type Service interface {
	CreateExpense(userID string, req CreateExpenseRequest) (*Expense, error)
	ListExpenses(userID string) ([]Expense, error)
	GetExpense(userID string, expenseID int64) (*Expense, error)
	UpdateExpense(userID string, expenseID int64, req UpdateExpenseRequest) (*Expense, error)
	DeleteExpense(userID string, expenseID int64) error
}

type service struct {
	repo            Repository
	categoryService CategoryService
	logger          *zap.Logger
	now             func() time.Time
}

func NewExpenseService(repo Repository, categoryService CategoryService, logger *zap.Logger) Service {
	return &service{
		repo:            repo,
		categoryService: categoryService,
		logger:          logger,
		now:             time.Now,
	}
}

// parseAmount accepts any JSON number strictly greater than zero.
func parseAmount(raw json.RawMessage) (float64, error) {
	var amount float64
	if err := json.Unmarshal(raw, &amount); err != nil {
		return 0, ErrInvalidAmount
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// CreateExpense validates the payload in the fixed order (presence, amount,
// description, date, category ownership) and creates the expense. The
// category must belong to the caller; the foreign key backs that check
// against a concurrent category delete.
func (s *service) CreateExpense(userID string, req CreateExpenseRequest) (*Expense, error) {
	if req.Amount == nil || req.Description == nil || req.CategoryID == nil {
		return nil, ErrMissingFields
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}

	if len(*req.Description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	date := s.now().UTC()
	if req.Date != nil {
		date, err = parseDate(*req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	owned, err := s.categoryService.DoesUserCategoryExist(*req.CategoryID, userID)
	if err != nil {
		s.logger.Error("could not check category ownership", zap.Error(err))
		return nil, ErrInternalError
	}
	if !owned {
		return nil, ErrInvalidCategory
	}

	expense := &Expense{
		Amount:      amount,
		Description: *req.Description,
		UserID:      userID,
		CategoryID:  *req.CategoryID,
		Date:        date,
	}
	if err := s.repo.createExpense(expense); err != nil {
		if errors.Is(err, ErrInvalidCategoryReference) {
			return nil, ErrInvalidCategory
		}
		s.logger.Error("could not create expense", zap.Error(err))
		return nil, ErrInternalError
	}

	return expense, nil
}

func (s *service) ListExpenses(userID string) ([]Expense, error) {
	expenses, err := s.repo.findByUser(userID)
	if err != nil {
		s.logger.Error("could not list expenses", zap.Error(err))
		return nil, ErrInternalError
	}
	return expenses, nil
}

func (s *service) GetExpense(userID string, expenseID int64) (*Expense, error) {
	expense, err := s.repo.findByIDAndUser(expenseID, userID)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		s.logger.Error("could not find expense", zap.Error(err))
		return nil, ErrInternalError
	}
	return expense, nil
}

// UpdateExpense applies a partial update. Every present field is validated
// with the creation rules before anything is written; a single failure
// aborts the whole update and the row stays untouched. The write itself is
// one UPDATE statement covering exactly the present fields.
func (s *service) UpdateExpense(userID string, expenseID int64, req UpdateExpenseRequest) (*Expense, error) {
	if req.Amount == nil && req.Description == nil && req.CategoryID == nil && req.Date == nil {
		return nil, ErrNoData
	}

	var changes ExpenseChanges

	if req.Amount != nil {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, ErrInvalidAmount
		}
		changes.Amount = &amount
	}

	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		changes.Description = req.Description
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		changes.Date = &date
	}

	if _, err := s.repo.findByIDAndUser(expenseID, userID); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		s.logger.Error("could not find expense", zap.Error(err))
		return nil, ErrInternalError
	}

	if req.CategoryID != nil {
		owned, err := s.categoryService.DoesUserCategoryExist(*req.CategoryID, userID)
		if err != nil {
			s.logger.Error("could not check category ownership", zap.Error(err))
			return nil, ErrInternalError
		}
		if !owned {
			return nil, ErrInvalidCategory
		}
		changes.CategoryID = req.CategoryID
	}

	expense, err := s.repo.updateExpense(expenseID, userID, changes)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			return nil, ErrExpenseNotFound
		case errors.Is(err, ErrInvalidCategoryReference):
			return nil, ErrInvalidCategory
		default:
			s.logger.Error("could not update expense", zap.Error(err))
			return nil, ErrInternalError
		}
	}

	return expense, nil
}

func (s *service) DeleteExpense(userID string, expenseID int64) error {
	if err := s.repo.deleteExpense(expenseID, userID); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		s.logger.Error("could not delete expense", zap.Error(err))
		return ErrInternalError
	}
	return nil
}
