package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/server/models"
)

const userColumns = `id, email, password, salt, name, phone, cpf, birth_date, photo_url, photo_path, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password, salt, name, phone, cpf, birth_date, photo_url, photo_path)
         VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Salt, user.Name, user.Phone, user.CPF, user.BirthDate).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.PhotoURL, user.PhotoPath = nil, nil
	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.get(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {

	query :=
		`UPDATE users
		 SET name = $2, phone = $3, cpf = $4, birth_date = $5,
		     photo_url = COALESCE($6, photo_url), photo_path = COALESCE($7, photo_path)
		 WHERE id = $1
		 RETURNING ` + userColumns

	return r.get(ctx, query, id, upd.Name, upd.Phone, upd.CPF, upd.BirthDate, upd.PhotoURL, upd.PhotoPath)
}

func (r *PostgresRepository) get(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, args...)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
