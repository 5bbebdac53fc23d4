package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/complaints"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/events"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction,
// so services can run the same repository code inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Events(db dbx.DBTX) events.Repository
	Complaints(db dbx.DBTX) complaints.Repository
}
