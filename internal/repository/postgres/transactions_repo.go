package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minbank/ledger-service/internal/models"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

func (r *transactionsRepo) GetByID(ctx context.Context, id int64) (models.Transaction, error) {
	var rec models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, sender, receiver, amount, created_at
		   FROM transactions
		  WHERE id=$1`,
		id,
	).Scan(&rec.ID, &rec.Sender, &rec.Receiver, &rec.Amount, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, fmt.Errorf("%w: id %d", models.ErrTransactionNotFound, id)
	}
	return rec, err
}

// ListByAccount returns history in either direction, newest first. Both
// the sender and receiver columns are indexed for this query.
func (r *transactionsRepo) ListByAccount(ctx context.Context, username string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sender, receiver, amount, created_at
		   FROM transactions
		  WHERE sender=$1 OR receiver=$1
		  ORDER BY id DESC
		  LIMIT $2 OFFSET $3`,
		username, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var rec models.Transaction
		if err := rows.Scan(&rec.ID, &rec.Sender, &rec.Receiver, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
