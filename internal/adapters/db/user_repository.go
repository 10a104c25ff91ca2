package db

import (
	"context"
	"database/sql"
	"fmt"

	"subasta-auction-service/internal/domain/shared"
)

// UserRepository resolves bidder ids against the usuarios table. Bidder ids
// are opaque to the core, so the lookup is by plain string key.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new user repository
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*shared.User, error) {
	query := `
		SELECT id, nombre
		FROM usuarios
		WHERE id = $1
	`

	var user shared.User
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
