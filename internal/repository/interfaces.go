package repository

import (
	"context"

	"github.com/minbank/ledger-service/internal/models"
)

// UnitOfWork is the atomic scope of a single transfer. All writes issued
// through it become visible together when WithTx commits, or not at all.
//
// GetForUpdate takes exclusive access to the record until the unit
// resolves. Lock ordering is the caller's job: accounts must be requested
// in lexicographic username order.
type UnitOfWork interface {
	// GetForUpdate returns the account and whether it exists. The
	// identifier is locked either way, so existence checks after
	// acquisition stay race-free.
	GetForUpdate(ctx context.Context, username string) (models.Account, bool, error)
	UpdateBalance(ctx context.Context, username string, newBalance int64) error
	// AppendTransaction assigns the record id and timestamp from the
	// store clock.
	AppendTransaction(ctx context.Context, rec models.Transaction) (models.Transaction, error)
}

type Accounts interface {
	Create(ctx context.Context, acc models.Account) (models.Account, error)
	// Get is a non-locking snapshot read, allowed to be momentarily
	// stale relative to in-flight transfers.
	Get(ctx context.Context, username string) (models.Account, bool, error)
	List(ctx context.Context) ([]models.Account, error)

	// WithTx runs fn inside one atomic unit of work. A nil return means
	// every write is durably visible; an error means none are. Lock
	// waits inside fn are bounded and surface as
	// models.ErrTransactionAborted.
	WithTx(ctx context.Context, fn func(UnitOfWork) error) error
}

type Transactions interface {
	GetByID(ctx context.Context, id int64) (models.Transaction, error)
	ListByAccount(ctx context.Context, username string, limit, offset int) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
