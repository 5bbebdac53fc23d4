// Package complaints provides the repository contract and PostgreSQL storage
// for complaints.
package complaints

import (
	"context"

	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error)

	// List returns every complaint with its creator's name and email, most
	// recent occurrence first.
	List(ctx context.Context) ([]*models.Complaint, error)

	// FindByID returns common.ErrorNotFound for unknown or malformed ids and
	// locks the row when called inside a transaction.
	FindByID(ctx context.Context, id string) (*models.Complaint, error)

	Delete(ctx context.Context, id string) error
}
