// Package refreshtokens declares the server-side repository contract for
// recording issued refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

// Repository records issued refresh tokens by hash. Verification of a refresh
// token never depends on this table; it exists so logout has something to
// clear.
type Repository interface {
	// Create stores tokenHash for userID, expiring at expiresAt.
	Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error

	// Find returns the record for tokenHash or common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// DeleteByUser removes every record of userID and reports how many went.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
