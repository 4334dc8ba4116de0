package category

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already taken")
	ErrCategoryInUse     = errors.New("category has associated expenses")
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

type Repository interface {
	createCategory(category *Category) error
	findByUser(userID string) ([]Category, error)
	findByIDAndUser(id int64, userID string) (*Category, error)
	existsByNameAndUser(name, userID string) (bool, error)
	existsByIDAndUser(id int64, userID string) (bool, error)
	updateName(category *Category) error
	deleteCategory(id int64, userID string) error
	hasExpenses(categoryID int64) (bool, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) Repository {
	return &categoryRepository{db: db}
}

// createCategory inserts the category inside a transaction. The unique
// (name, user_id) constraint is the authoritative backstop for the service's
// uniqueness pre-check; a violation surfaces as ErrDuplicateCategory.
func (r *categoryRepository) createCategory(category *Category) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO categories (name, user_id)
		VALUES ($1, $2)
		RETURNING id;
	`
	err = tx.QueryRow(query, category.Name, category.UserID).Scan(&category.ID)
	if err != nil {
		if pgErrorCode(err) == uniqueViolationCode {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("could not create category: %v", err)
	}

	return tx.Commit()
}

func (r *categoryRepository) findByUser(userID string) ([]Category, error) {
	categories := make([]Category, 0)
	err := r.db.Select(&categories, `SELECT id, name, user_id FROM categories WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %v", err)
	}
	return categories, nil
}

func (r *categoryRepository) findByIDAndUser(id int64, userID string) (*Category, error) {
	var category Category
	err := r.db.Get(&category, `SELECT id, name, user_id FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("could not find category: %v", err)
	}
	return &category, nil
}

func (r *categoryRepository) existsByNameAndUser(name, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1 AND user_id = $2)"
	err := r.db.QueryRow(query, name, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *categoryRepository) existsByIDAndUser(id int64, userID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)"
	err := r.db.QueryRow(query, id, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// updateName renames the category inside a transaction, re-checking
// ownership in the WHERE clause. Unique constraint races surface as
// ErrDuplicateCategory.
func (r *categoryRepository) updateName(category *Category) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE categories SET name = $1 WHERE id = $2 AND user_id = $3`,
		category.Name, category.ID, category.UserID)
	if err != nil {
		if pgErrorCode(err) == uniqueViolationCode {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("could not update category: %v", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not update category: %v", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return tx.Commit()
}

// deleteCategory removes the category inside a transaction. The RESTRICT
// foreign key from expenses backs the service's delete guard: a violation
// surfaces as ErrCategoryInUse, never as a raw storage error.
func (r *categoryRepository) deleteCategory(id int64, userID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %v", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolationCode {
			return ErrCategoryInUse
		}
		return fmt.Errorf("could not delete category: %v", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete category: %v", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return tx.Commit()
}

func (r *categoryRepository) hasExpenses(categoryID int64) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM expenses WHERE category_id = $1)"
	err := r.db.QueryRow(query, categoryID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
