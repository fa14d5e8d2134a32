package repomanager

import (
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/server/repositories/entries"
	"github.com/daybook-app/daybook/internal/server/repositories/logintokens"
	"github.com/daybook-app/daybook/internal/server/repositories/users"
)

// PostgresRepositoryManager builds the PostgreSQL implementations.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) MagicLoginTokens(db dbx.DBTX) logintokens.Repository {
	return logintokens.NewPostgresRepository(db)
}
