package expense

import "time"

// Expense is a single spending record owned by one user and linked to a
// category owned by the same user. Date defaults to creation time when the
// caller does not supply one.
type Expense struct {
	ID          int64     `db:"id" json:"id"`
	Amount      float64   `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	UserID      string    `db:"user_id" json:"user_id"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	Date        time.Time `db:"date" json:"date"`
}
