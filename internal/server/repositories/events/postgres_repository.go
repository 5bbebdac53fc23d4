package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

// PostgresRepository implements event storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {

	query :=
		`INSERT INTO events (description, start_date, end_date, created_by, category, address, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		event.Description, event.StartDate, event.EndDate, event.CreatedBy,
		event.Category, event.Address, event.Latitude, event.Longitude).
		Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return event, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Event, error) {

	query :=
		`SELECT e.id, e.description, e.start_date, e.end_date, e.created_by, e.category,
		        e.address, e.latitude, e.longitude, e.created_at,
		        u.name AS creator_name, u.email AS creator_email
		 FROM events e
		 LEFT JOIN users u ON u.id = e.created_by
		 ORDER BY e.start_date ASC
		 `

	result := []*models.Event{}
	if err := r.db.SelectContext(ctx, &result, query); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {

	query :=
		`SELECT id, description, start_date, end_date, created_by, category, address, latitude, longitude, created_at
		 FROM events
		 WHERE id = $1
		 FOR UPDATE
		 `

	var e models.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Description, &e.StartDate, &e.EndDate, &e.CreatedBy, &e.Category,
		&e.Address, &e.Latitude, &e.Longitude, &e.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
