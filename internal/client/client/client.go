package client

import (
	"context"

	"github.com/dmitrijs2005/civicdesk/internal/client/models"
)

// Client is the part of the civicdesk API the CLI talks to.
type Client interface {
	Register(ctx context.Context, in RegisterRequest) error
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	LoggedIn() bool
	Health(ctx context.Context) error
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	CPF      *string `json:"cpf,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}
