package category

// Category is an expense grouping owned by exactly one user. The (name,
// user) pair is unique and the owner never changes after creation.
type Category struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	UserID string `db:"user_id" json:"user_id"`
}
