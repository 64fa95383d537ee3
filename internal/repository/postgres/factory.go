package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/minbank/ledger-service/internal/repository"
)

type Repositories struct {
	Accounts     repo.Accounts
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

// NewRepositories wires the Postgres-backed stores. lockWait bounds how
// long a transfer may wait on a row lock before aborting.
func NewRepositories(pool *pgxpool.Pool, lockWait time.Duration) Repositories {
	return Repositories{
		Accounts:     &accountsRepo{pool: pool, lockWait: lockWait},
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
