package expense

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	expense   *Expense
	createErr error
	updateErr error
	deleteErr error

	created       *Expense
	updateChanges *ExpenseChanges
	deletedID     int64
}

func (m *mockRepository) createExpense(expense *Expense) error {
	if m.createErr != nil {
		return m.createErr
	}
	expense.ID = 1
	m.created = expense
	return nil
}

func (m *mockRepository) findByUser(userID string) ([]Expense, error) {
	if m.expense != nil {
		return []Expense{*m.expense}, nil
	}
	return []Expense{}, nil
}

func (m *mockRepository) findByIDAndUser(id int64, userID string) (*Expense, error) {
	if m.expense != nil && m.expense.ID == id && m.expense.UserID == userID {
		copy := *m.expense
		return &copy, nil
	}
	return nil, ErrExpenseNotFound
}

func (m *mockRepository) updateExpense(id int64, userID string, changes ExpenseChanges) (*Expense, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updateChanges = &changes
	updated := *m.expense
	if changes.Amount != nil {
		updated.Amount = *changes.Amount
	}
	if changes.Description != nil {
		updated.Description = *changes.Description
	}
	if changes.CategoryID != nil {
		updated.CategoryID = *changes.CategoryID
	}
	if changes.Date != nil {
		updated.Date = *changes.Date
	}
	return &updated, nil
}

func (m *mockRepository) deleteExpense(id int64, userID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

type stubCategoryService struct {
	owned bool
	err   error
}

func (s *stubCategoryService) DoesUserCategoryExist(categoryID int64, userID string) (bool, error) {
	return s.owned, s.err
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

func rawAmount(s string) json.RawMessage {
	return json.RawMessage(s)
}

func newTestService(repo Repository, categories CategoryService) *service {
	svc := NewExpenseService(repo, categories, zap.NewNop()).(*service)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func validCreateRequest() CreateExpenseRequest {
	return CreateExpenseRequest{
		Amount:      rawAmount("10.5"),
		Description: strPtr("Lunch"),
		CategoryID:  int64Ptr(3),
	}
}

func TestCreateExpense_MissingFields(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	tests := []struct {
		name string
		req  CreateExpenseRequest
	}{
		{"empty payload", CreateExpenseRequest{}},
		{"no amount", CreateExpenseRequest{Description: strPtr("Lunch"), CategoryID: int64Ptr(3)}},
		{"no description", CreateExpenseRequest{Amount: rawAmount("10"), CategoryID: int64Ptr(3)}},
		{"no category", CreateExpenseRequest{Amount: rawAmount("10"), Description: strPtr("Lunch")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense("u-1", tt.req)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}
}

func TestCreateExpense_InvalidAmount(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	for _, raw := range []string{"0", "-5", "true", `"ten"`, "[1]"} {
		req := validCreateRequest()
		req.Amount = rawAmount(raw)
		_, err := svc.CreateExpense("u-1", req)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s must be rejected", raw)
	}
}

func TestCreateExpense_DescriptionTooLong(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	req := validCreateRequest()
	req.Description = strPtr(strings.Repeat("x", 201))
	_, err := svc.CreateExpense("u-1", req)
	assert.ErrorIs(t, err, ErrDescriptionTooLong)

	req.Description = strPtr(strings.Repeat("x", 200))
	_, err = svc.CreateExpense("u-1", req)
	assert.NoError(t, err, "200 characters is within range")
}

func TestCreateExpense_InvalidDate(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	req := validCreateRequest()
	req.Date = strPtr("06/01/2024")
	_, err := svc.CreateExpense("u-1", req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCreateExpense_AcceptedDateLayouts(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	for _, value := range []string{
		"2024-06-01T12:30:00Z",
		"2024-06-01T12:30:00",
		"2024-06-01 12:30:00",
		"2024-06-01",
	} {
		req := validCreateRequest()
		req.Date = strPtr(value)
		_, err := svc.CreateExpense("u-1", req)
		assert.NoError(t, err, "date %q must be accepted", value)
	}
}

func TestCreateExpense_DateDefaultsToNow(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	expense, err := svc.CreateExpense("u-1", validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), expense.Date)
}

func TestCreateExpense_UnownedCategory(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &stubCategoryService{owned: false})

	_, err := svc.CreateExpense("u-1", validCreateRequest())
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Nil(t, repo.created)
}

func TestCreateExpense_CategoryDeletedConcurrently(t *testing.T) {
	// The ownership pre-check passed but the insert hit the foreign key.
	repo := &mockRepository{createErr: ErrInvalidCategoryReference}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	_, err := svc.CreateExpense("u-1", validCreateRequest())
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestCreateExpense_Success(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	expense, err := svc.CreateExpense("u-1", validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expense.ID)
	assert.Equal(t, 10.5, expense.Amount)
	assert.Equal(t, "Lunch", expense.Description)
	assert.Equal(t, int64(3), expense.CategoryID)
	assert.Equal(t, "u-1", expense.UserID)
}

func TestGetExpense_NotFound(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	_, err := svc.GetExpense("u-1", 42)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestGetExpense_OtherUsersExpense(t *testing.T) {
	repo := &mockRepository{expense: &Expense{ID: 42, UserID: "u-1", Amount: 10}}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	_, err := svc.GetExpense("u-2", 42)
	assert.ErrorIs(t, err, ErrExpenseNotFound, "cross-user access must look like absence")
}

func TestUpdateExpense_NoData(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	_, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestUpdateExpense_InvalidFieldAbortsWholeUpdate(t *testing.T) {
	// One valid field plus one invalid field must leave the row untouched.
	repo := &mockRepository{expense: &Expense{ID: 42, UserID: "u-1", Amount: 10}}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	_, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{
		Description: strPtr("Dinner"),
		Amount:      rawAmount("-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Nil(t, repo.updateChanges, "repository must not be written")
}

func TestUpdateExpense_ValidationBeforeOwnership(t *testing.T) {
	// Field errors win over the missing-target 404.
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	_, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{Amount: rawAmount("true")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestUpdateExpense_NotFound(t *testing.T) {
	svc := newTestService(&mockRepository{}, &stubCategoryService{owned: true})

	_, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{Amount: rawAmount("12")})
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestUpdateExpense_UnownedCategory(t *testing.T) {
	repo := &mockRepository{expense: &Expense{ID: 42, UserID: "u-1", Amount: 10}}
	svc := newTestService(repo, &stubCategoryService{owned: false})

	_, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{CategoryID: int64Ptr(9)})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Nil(t, repo.updateChanges)
}

func TestUpdateExpense_PartialChanges(t *testing.T) {
	repo := &mockRepository{expense: &Expense{ID: 42, UserID: "u-1", Amount: 10, Description: "Lunch", CategoryID: 3}}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	expense, err := svc.UpdateExpense("u-1", 42, UpdateExpenseRequest{Amount: rawAmount("25.75")})
	require.NoError(t, err)

	require.NotNil(t, repo.updateChanges)
	require.NotNil(t, repo.updateChanges.Amount)
	assert.Equal(t, 25.75, *repo.updateChanges.Amount)
	assert.Nil(t, repo.updateChanges.Description, "absent fields stay out of the change set")
	assert.Nil(t, repo.updateChanges.CategoryID)
	assert.Nil(t, repo.updateChanges.Date)

	assert.Equal(t, 25.75, expense.Amount)
	assert.Equal(t, "Lunch", expense.Description, "untouched fields keep their values")
}

func TestDeleteExpense_NotFound(t *testing.T) {
	repo := &mockRepository{deleteErr: ErrExpenseNotFound}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	err := svc.DeleteExpense("u-1", 42)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestDeleteExpense_Success(t *testing.T) {
	repo := &mockRepository{expense: &Expense{ID: 42, UserID: "u-1"}}
	svc := newTestService(repo, &stubCategoryService{owned: true})

	require.NoError(t, svc.DeleteExpense("u-1", 42))
	assert.Equal(t, int64(42), repo.deletedID)
}
