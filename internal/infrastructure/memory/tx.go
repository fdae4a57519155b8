package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

// Transactor gives the in-memory users and requests all-or-nothing writes
// by snapshotting both before fn runs and restoring them when it fails.
// Writers outside WithinTx are not isolated from a rollback.
type Transactor struct {
	mu       sync.Mutex
	users    *UserRepository
	requests *RequestRepository
}

func NewTransactor(users *UserRepository, requests *RequestRepository) *Transactor {
	return &Transactor{users: users, requests: requests}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, users repository.UserRepository, requests repository.RequestRepository) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.users.snapshot()
	recharges, withdrawals := t.requests.snapshot()
	if err := fn(ctx, t.users, t.requests); err != nil {
		t.users.restore(users)
		t.requests.restore(recharges, withdrawals)
		return err
	}
	return nil
}

func (r *UserRepository) snapshot() map[string]*entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// stored users are never mutated in place, only replaced
	return maps.Clone(r.users)
}

func (r *UserRepository) restore(users map[string]*entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = users
}

func (r *RequestRepository) snapshot() (map[string]entity.RechargeRecord, map[string]entity.WithdrawalRecord) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.recharges), maps.Clone(r.withdrawals)
}

func (r *RequestRepository) restore(recharges map[string]entity.RechargeRecord, withdrawals map[string]entity.WithdrawalRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recharges = recharges
	r.withdrawals = withdrawals
}

var _ repository.Transactor = (*Transactor)(nil)
