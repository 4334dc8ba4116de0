package expense

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrExpenseNotFound          = errors.New("expense not found")
	ErrInvalidCategoryReference = errors.New("invalid category reference")
)

const foreignKeyViolationCode = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// ExpenseChanges carries the fields of a partial update. Nil fields are
// left untouched by the generated UPDATE.
type ExpenseChanges struct {
	Amount      *float64
	Description *string
	CategoryID  *int64
	Date        *time.Time
}

type Repository interface {
	createExpense(expense *Expense) error
	findByUser(userID string) ([]Expense, error)
	findByIDAndUser(id int64, userID string) (*Expense, error)
	updateExpense(id int64, userID string, changes ExpenseChanges) (*Expense, error)
	deleteExpense(id int64, userID string) error
}

type expenseRepository struct {
	db *sqlx.DB
}

func NewExpenseRepository(db *sqlx.DB) Repository {
	return &expenseRepository{db: db}
}

// createExpense inserts the expense inside a transaction. The foreign key
// to categories backs the service's ownership pre-check: a violation (the
// category was deleted concurrently) surfaces as ErrInvalidCategoryReference.
func (r *expenseRepository) createExpense(expense *Expense) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (amount, description, user_id, category_id, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	err = tx.QueryRow(query, expense.Amount, expense.Description, expense.UserID, expense.CategoryID, expense.Date).Scan(&expense.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidCategoryReference
		}
		return fmt.Errorf("could not create expense: %v", err)
	}

	return tx.Commit()
}

func (r *expenseRepository) findByUser(userID string) ([]Expense, error) {
	expenses := make([]Expense, 0)
	err := r.db.Select(&expenses, `SELECT id, amount, description, user_id, category_id, date FROM expenses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list expenses: %v", err)
	}
	return expenses, nil
}

func (r *expenseRepository) findByIDAndUser(id int64, userID string) (*Expense, error) {
	var expense Expense
	err := r.db.Get(&expense, `SELECT id, amount, description, user_id, category_id, date FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("could not find expense: %v", err)
	}
	return &expense, nil
}

// updateExpense applies the present fields as a single UPDATE built with
// squirrel, so the mutation is all-or-nothing by construction. Ownership is
// re-checked in the WHERE clause and the updated row is returned.
func (r *expenseRepository) updateExpense(id int64, userID string, changes ExpenseChanges) (*Expense, error) {
	builder := squirrel.Update("expenses").PlaceholderFormat(squirrel.Dollar)
	if changes.Amount != nil {
		builder = builder.Set("amount", *changes.Amount)
	}
	if changes.Description != nil {
		builder = builder.Set("description", *changes.Description)
	}
	if changes.CategoryID != nil {
		builder = builder.Set("category_id", *changes.CategoryID)
	}
	if changes.Date != nil {
		builder = builder.Set("date", *changes.Date)
	}
	builder = builder.
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING id, amount, description, user_id, category_id, date")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("could not build update query: %v", err)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	var expense Expense
	err = tx.QueryRowx(query, args...).StructScan(&expense)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidCategoryReference
		}
		return nil, fmt.Errorf("could not update expense: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit update: %v", err)
	}
	return &expense, nil
}

func (r *expenseRepository) deleteExpense(id int64, userID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("could not delete expense: %v", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete expense: %v", err)
	}
	if rows == 0 {
		return ErrExpenseNotFound
	}

	return tx.Commit()
}
