package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minbank/ledger-service/internal/models"
	repo "github.com/minbank/ledger-service/internal/repository"
)

const (
	codeUniqueViolation = "23505"
	codeLockNotAvail    = "55P03"
)

type accountsRepo struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

func (r *accountsRepo) Create(ctx context.Context, acc models.Account) (models.Account, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts(username, balance, role)
		 VALUES($1, $2, $3)
		 RETURNING created_at, updated_at`,
		acc.Username, acc.Balance, acc.Role,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if isPgCode(err, codeUniqueViolation) {
		return models.Account{}, models.ErrAccountExists
	}
	if err != nil {
		return models.Account{}, err
	}
	return acc, nil
}

func (r *accountsRepo) Get(ctx context.Context, username string) (models.Account, bool, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`SELECT username, balance, role, created_at, updated_at
		   FROM accounts
		  WHERE username=$1`,
		username,
	).Scan(&a.Username, &a.Balance, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, err
	}
	return a, true, nil
}

func (r *accountsRepo) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT username, balance, role, created_at, updated_at
		   FROM accounts ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.Username, &a.Balance, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// WithTx runs fn inside one Postgres transaction with a bounded row-lock
// wait. SET LOCAL scopes the timeout to this transaction only.
func (r *accountsRepo) WithTx(ctx context.Context, fn func(repo.UnitOfWork) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", models.ErrTransactionAborted, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("%w: lock_timeout: %v", models.ErrTransactionAborted, err)
	}
	if err := fn(&pgUnit{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", models.ErrTransactionAborted, err)
	}
	return nil
}

// pgUnit scopes store writes to a single pgx transaction.
type pgUnit struct{ tx pgx.Tx }

func (u *pgUnit) GetForUpdate(ctx context.Context, username string) (models.Account, bool, error) {
	var a models.Account
	err := u.tx.QueryRow(ctx,
		`SELECT username, balance, role, created_at, updated_at
		   FROM accounts
		  WHERE username=$1
		    FOR UPDATE`,
		username,
	).Scan(&a.Username, &a.Balance, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, false, nil
	}
	if isPgCode(err, codeLockNotAvail) {
		return models.Account{}, false, fmt.Errorf("%w: lock wait exceeded on %s", models.ErrTransactionAborted, username)
	}
	if err != nil {
		return models.Account{}, false, err
	}
	return a, true, nil
}

func (u *pgUnit) UpdateBalance(ctx context.Context, username string, newBalance int64) error {
	_, err := u.tx.Exec(ctx,
		`UPDATE accounts SET balance=$2, updated_at=now() WHERE username=$1`,
		username, newBalance,
	)
	return err
}

func (u *pgUnit) AppendTransaction(ctx context.Context, rec models.Transaction) (models.Transaction, error) {
	err := u.tx.QueryRow(ctx,
		`INSERT INTO transactions(sender, receiver, amount)
		 VALUES($1, $2, $3)
		 RETURNING id, created_at`,
		rec.Sender, rec.Receiver, rec.Amount,
	).Scan(&rec.ID, &rec.CreatedAt)
	return rec, err
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
