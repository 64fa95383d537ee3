// Package memory implements the account store on process memory. It is
// selected with DATABASE_URL=memory and backs the service tests. Writes
// issued through a unit of work are staged and applied only on commit,
// so rollback is a no-op and readers never observe partial transfers.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minbank/ledger-service/internal/models"
	repo "github.com/minbank/ledger-service/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	records  []models.Transaction
	audits   []models.AuditLog
	nextID   int64

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	lockWait time.Duration
}

func New(lockWait time.Duration) *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		locks:    make(map[string]*sync.Mutex),
		lockWait: lockWait,
	}
}

// ---------------- Accounts ----------------

func (s *Store) Create(_ context.Context, acc models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.Username]; ok {
		return models.Account{}, models.ErrAccountExists
	}
	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now
	s.accounts[acc.Username] = acc
	return acc, nil
}

func (s *Store) Get(_ context.Context, username string) (models.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[username]
	return acc, ok, nil
}

func (s *Store) List(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(repo.UnitOfWork) error) error {
	u := &unit{s: s, staged: make(map[string]int64)}
	defer u.unlockAll()
	if err := fn(u); err != nil {
		// staged writes are discarded, nothing became visible
		return err
	}
	u.commit()
	return nil
}

// lockFor returns the per-identifier record lock, creating it on first
// use. Locks exist for identifiers without accounts too, so existence
// checks made after acquisition stay race-free.
func (s *Store) lockFor(username string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	mu, ok := s.locks[username]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[username] = mu
	}
	return mu
}

func (s *Store) acquire(ctx context.Context, username string) error {
	mu := s.lockFor(username)
	deadline := time.Now().Add(s.lockWait)
	for {
		if mu.TryLock() {
			return nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return fmt.Errorf("%w: lock wait exceeded on %s", models.ErrTransactionAborted, username)
		}
		time.Sleep(200 * time.Microsecond)
	}
}

// ---------------- unit of work ----------------

type unit struct {
	s      *Store
	locked []string
	staged map[string]int64     // username -> new balance
	recs   []models.Transaction // appended records, visible on commit
}

func (u *unit) GetForUpdate(ctx context.Context, username string) (models.Account, bool, error) {
	if err := u.s.acquire(ctx, username); err != nil {
		return models.Account{}, false, err
	}
	u.locked = append(u.locked, username)

	u.s.mu.RLock()
	acc, ok := u.s.accounts[username]
	u.s.mu.RUnlock()
	if !ok {
		return models.Account{}, false, nil
	}
	// a re-read inside the same unit sees its own staged write
	if bal, staged := u.staged[username]; staged {
		acc.Balance = bal
	}
	return acc, true, nil
}

func (u *unit) UpdateBalance(_ context.Context, username string, newBalance int64) error {
	u.staged[username] = newBalance
	return nil
}

func (u *unit) AppendTransaction(_ context.Context, rec models.Transaction) (models.Transaction, error) {
	u.s.mu.Lock()
	u.s.nextID++
	rec.ID = u.s.nextID
	u.s.mu.Unlock()
	rec.CreatedAt = time.Now()
	u.recs = append(u.recs, rec)
	return rec, nil
}

func (u *unit) commit() {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	now := time.Now()
	for username, bal := range u.staged {
		acc := u.s.accounts[username]
		acc.Balance = bal
		acc.UpdatedAt = now
		u.s.accounts[username] = acc
	}
	u.s.records = append(u.s.records, u.recs...)
}

func (u *unit) unlockAll() {
	for _, username := range u.locked {
		u.s.lockFor(username).Unlock()
	}
	u.locked = nil
}

// ---------------- Transactions ----------------

func (s *Store) GetByID(_ context.Context, id int64) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.Transaction{}, fmt.Errorf("%w: id %d", models.ErrTransactionNotFound, id)
}

func (s *Store) ListByAccount(_ context.Context, username string, limit, offset int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Transaction
	for i := len(s.records) - 1; i >= 0; i-- { // newest first
		rec := s.records[i]
		if rec.Sender == username || rec.Receiver == username {
			matched = append(matched, rec)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// ---------------- AuditLogs ----------------

// AuditLogs adapts the store to the audit interface; the method name
// Create is already taken by account creation.
func (s *Store) AuditLogs() repo.AuditLogs { return auditView{s} }

type auditView struct{ s *Store }

func (v auditView) Create(ctx context.Context, l models.AuditLog) error {
	return v.s.CreateAudit(ctx, l)
}

func (s *Store) CreateAudit(_ context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	s.mu.Lock()
	s.audits = append(s.audits, l)
	s.mu.Unlock()
	return nil
}

// Audits returns a copy of the operational audit trail.
func (s *Store) Audits() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}
