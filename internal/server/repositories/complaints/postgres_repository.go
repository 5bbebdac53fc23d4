package complaints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error) {

	query :=
		`INSERT INTO complaints (description, occurrence_date, created_by, category, address, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.Description, c.OccurrenceDate, c.CreatedBy, c.Category, c.Address, c.Latitude, c.Longitude).
		Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Complaint, error) {

	query :=
		`SELECT c.id, c.description, c.occurrence_date, c.created_by, c.category,
		        c.address, c.latitude, c.longitude, c.created_at,
		        u.name AS creator_name, u.email AS creator_email
		 FROM complaints c
		 LEFT JOIN users u ON u.id = c.created_by
		 ORDER BY c.occurrence_date DESC, c.created_at DESC
		 `

	result := []*models.Complaint{}
	if err := r.db.SelectContext(ctx, &result, query); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {

	query :=
		`SELECT id, description, occurrence_date, created_by, category, address, latitude, longitude, created_at
		 FROM complaints
		 WHERE id = $1
		 FOR UPDATE
		 `

	var c models.Complaint
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Description, &c.OccurrenceDate, &c.CreatedBy, &c.Category,
		&c.Address, &c.Latitude, &c.Longitude, &c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1`, id)
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
