// Package repomanager provides a factory for repositories bound to a DBTX,
// so services can compose several repositories inside one transaction.
package repomanager

import (
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/server/repositories/entries"
	"github.com/daybook-app/daybook/internal/server/repositories/logintokens"
	"github.com/daybook-app/daybook/internal/server/repositories/users"
)

// RepositoryManager yields repositories bound to the given handle, which is
// either the root *sql.DB or an open transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Entries(db dbx.DBTX) entries.Repository
	MagicLoginTokens(db dbx.DBTX) logintokens.Repository
}
