package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
)

// DirectoryUser is a read-only cache row of a user account, synced from
// account events. The inventory service never writes user accounts; it
// only mirrors enough identity to resolve holders and search borrowers.
type DirectoryUser struct {
	UserID    string    `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the user's full name
func (u *DirectoryUser) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserDirectoryRepository handles the user directory cache
type UserDirectoryRepository struct {
	db *database.DB
}

// NewUserDirectoryRepository creates a new user directory repository
func NewUserDirectoryRepository(db *database.DB) *UserDirectoryRepository {
	return &UserDirectoryRepository{db: db}
}

// Upsert inserts or refreshes a directory row
func (r *UserDirectoryRepository) Upsert(ctx context.Context, u *DirectoryUser) error {
	query := `
		INSERT INTO user_directory (user_id, first_name, last_name, email, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, u.UserID, u.FirstName, u.LastName, u.Email)
	return err
}

// Get gets a directory row by user ID
func (r *UserDirectoryRepository) Get(ctx context.Context, userID string) (*DirectoryUser, error) {
	var u DirectoryUser

	query := `
		SELECT user_id, first_name, last_name, email, updated_at
		FROM user_directory WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &u, query, userID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Delete removes a directory row
func (r *UserDirectoryRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM user_directory WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// Search finds users whose name or email contains the query,
// case-insensitive, capped at limit
func (r *UserDirectoryRepository) Search(ctx context.Context, search string, limit int) ([]*DirectoryUser, error) {
	var users []*DirectoryUser

	query := `
		SELECT user_id, first_name, last_name, email, updated_at
		FROM user_directory
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
		ORDER BY last_name, first_name
		LIMIT $2
	`
	pattern := "%" + search + "%"
	if err := r.db.SelectContext(ctx, &users, query, pattern, limit); err != nil {
		return nil, err
	}

	return users, nil
}
