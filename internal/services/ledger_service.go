package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/minbank/ledger-service/internal/metrics"
	"github.com/minbank/ledger-service/internal/models"
	repo "github.com/minbank/ledger-service/internal/repository"
	"github.com/minbank/ledger-service/internal/worker"
)

// LedgerService executes transfers. It holds no account state itself;
// all shared mutable state lives in the store, and every transfer runs
// inside one store unit of work.
type LedgerService struct {
	accounts repo.Accounts
	trx      repo.Transactions
	audits   repo.AuditLogs
	policy   DebitPolicy
	wp       *worker.Pool
}

func NewLedgerService(a repo.Accounts, t repo.Transactions, l repo.AuditLogs, wp *worker.Pool) *LedgerService {
	return &LedgerService{accounts: a, trx: t, audits: l, policy: DefaultDebitPolicy, wp: wp}
}

type TransferResult struct {
	TransactionID   int64 `json:"transaction_id"`
	SenderBalance   int64 `json:"sender_balance"`
	ReceiverBalance int64 `json:"receiver_balance"`
	// SenderDebited is false when the sender's role exempts it from the
	// charge; the sender balance is then unchanged.
	SenderDebited bool `json:"sender_debited"`
}

// Transfer moves amount from sender to receiver as one atomic unit:
// both balance updates and the transaction record commit together or
// not at all. rawAmount arrives unvalidated (string or stringified
// number) and must parse to a positive int64 in minor units.
//
// Every failure is returned as one of the typed sentinel errors in
// models; store faults and lock-wait timeouts surface as
// models.ErrTransactionAborted with no mutation applied.
func (s *LedgerService) Transfer(ctx context.Context, senderID, receiverID, rawAmount string, senderRole models.Role) (TransferResult, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return TransferResult{}, s.reject(senderID, receiverID, err)
	}
	if receiverID == "" || receiverID == senderID {
		return TransferResult{}, s.reject(senderID, receiverID, models.ErrSelfTransfer)
	}

	var res TransferResult
	err = s.accounts.WithTx(ctx, func(u repo.UnitOfWork) error {
		// fixed global lock order, so opposite transfers between the
		// same pair cannot deadlock
		first, second := senderID, receiverID
		if second < first {
			first, second = second, first
		}
		accs := make(map[string]models.Account, 2)
		found := make(map[string]bool, 2)
		for _, id := range []string{first, second} {
			acc, ok, err := u.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			accs[id], found[id] = acc, ok
		}
		if !found[receiverID] {
			return models.ErrReceiverNotFound
		}
		if !found[senderID] {
			return models.ErrSenderNotFound
		}

		sender, receiver := accs[senderID], accs[receiverID]
		debit := s.policy.ChargeSender(senderRole)
		if debit && sender.Balance < amount {
			return models.ErrInsufficientFunds
		}
		if receiver.Balance > math.MaxInt64-amount {
			return fmt.Errorf("%w: receiver balance overflow", models.ErrTransactionAborted)
		}

		if debit {
			sender.Balance -= amount
			if err := u.UpdateBalance(ctx, sender.Username, sender.Balance); err != nil {
				return err
			}
		}
		receiver.Balance += amount
		if err := u.UpdateBalance(ctx, receiver.Username, receiver.Balance); err != nil {
			return err
		}

		rec, err := u.AppendTransaction(ctx, models.Transaction{
			Sender:   senderID,
			Receiver: receiverID,
			Amount:   amount,
		})
		if err != nil {
			return err
		}
		res = TransferResult{
			TransactionID:   rec.ID,
			SenderBalance:   sender.Balance,
			ReceiverBalance: receiver.Balance,
			SenderDebited:   debit,
		}
		return nil
	})
	if err != nil {
		err = recoverTyped(err)
		metrics.TransfersTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.audit("transfer_denied", nil, map[string]any{
			"sender": senderID, "receiver": receiverID, "reason": err.Error(),
		})
		return TransferResult{}, err
	}

	metrics.TransfersTotal.WithLabelValues("committed").Inc()
	id := strconv.FormatInt(res.TransactionID, 10)
	s.audit("transfer_committed", &id, map[string]any{
		"sender": senderID, "receiver": receiverID, "amount": amount,
	})
	return res, nil
}

// ----------------- queries -----------------

// Balance is a snapshot read: it takes no locks and may be momentarily
// stale relative to in-flight transfers.
func (s *LedgerService) Balance(ctx context.Context, username string) (models.Account, error) {
	acc, ok, err := s.accounts.Get(ctx, username)
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return acc, nil
}

func (s *LedgerService) Transaction(ctx context.Context, id int64) (models.Transaction, error) {
	return s.trx.GetByID(ctx, id)
}

func (s *LedgerService) History(ctx context.Context, username string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.trx.ListByAccount(ctx, username, limit, offset)
}

// ----------------- helpers -----------------

// parseAmount accepts base-10 integers only. "1.5", "abc", "", "0",
// negatives and values past int64 all fail.
func parseAmount(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, models.ErrInvalidAmount
	}
	return n, nil
}

var typedErrors = []error{
	models.ErrInvalidAmount,
	models.ErrSelfTransfer,
	models.ErrSenderNotFound,
	models.ErrReceiverNotFound,
	models.ErrInsufficientFunds,
	models.ErrTransactionAborted,
}

// recoverTyped keeps the typed kinds intact and folds every other store
// fault into ErrTransactionAborted, so no failure escapes the service
// untyped.
func recoverTyped(err error) error {
	for _, typed := range typedErrors {
		if errors.Is(err, typed) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, models.ErrSenderNotFound):
		return "sender_not_found"
	case errors.Is(err, models.ErrReceiverNotFound):
		return "receiver_not_found"
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "aborted"
	}
}

func (s *LedgerService) reject(senderID, receiverID string, err error) error {
	metrics.TransfersTotal.WithLabelValues(outcomeLabel(err)).Inc()
	s.audit("transfer_denied", nil, map[string]any{
		"sender": senderID, "receiver": receiverID, "reason": err.Error(),
	})
	return err
}

// audit writes the operational trail asynchronously, outside the atomic
// unit. Best-effort: a failed audit write never fails the transfer.
func (s *LedgerService) audit(action string, entityID *string, details map[string]any) {
	if s.audits == nil || s.wp == nil {
		return
	}
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.audits.Create(ctx, models.AuditLog{
			EntityType: "transfer",
			EntityID:   entityID,
			Action:     action,
			Details:    details,
		})
		if err != nil {
			slog.Warn("audit write failed", "action", action, "err", err)
		}
	})
}
