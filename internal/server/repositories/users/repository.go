// Package users declares the server-side repository contract for user
// records and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a new user and fills its ID and CreatedAt. A duplicate
	// email yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail looks a user up by exact email match.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns common.ErrorNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// Update overwrites the profile fields and, when both are set, the photo
	// reference, in a single statement. It returns the updated row.
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
}
