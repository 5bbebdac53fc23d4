// Package services contains server-side business logic: the authentication
// flow, events and complaints. Services talk to the database through
// repomanager and to object storage through storage.ObjectStorage.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/jmoiron/sqlx"
)

// DBProvider hands out a pooled connection, waiting at most the pool's
// acquisition timeout. The caller closes it to give it back. *dbx.Pool
// satisfies it.
type DBProvider interface {
	Conn(ctx context.Context) (*sqlx.Conn, error)
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrUpstream, op, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, msg)
}
