// Package events provides the repository contract and PostgreSQL storage for
// civic events.
package events

import (
	"context"

	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

type Repository interface {
	// Create inserts event and fills ID and CreatedAt.
	Create(ctx context.Context, event *models.Event) (*models.Event, error)

	// List returns every event with its creator's name and email, earliest
	// start date first.
	List(ctx context.Context) ([]*models.Event, error)

	// FindByID returns common.ErrorNotFound for unknown or malformed ids.
	// Inside a transaction the row stays locked until commit.
	FindByID(ctx context.Context, id string) (*models.Event, error)

	// Delete removes the event; common.ErrorNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}
