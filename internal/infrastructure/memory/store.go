// Package memory implements the repositories in process. Values are copied
// on the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]*entity.User{}}
}

func (r *UserRepository) Get(_ context.Context, phone string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByReferralCode(_ context.Context, code string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ReferralCode == code {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Upsert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.UpdatedAt = time.Now()
	r.users[u.Phone] = cloneUser(u)
	return nil
}

func (r *UserRepository) UpsertMany(_ context.Context, users []*entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, u := range users {
		u.UpdatedAt = now
		r.users[u.Phone] = cloneUser(u)
	}
	return nil
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Orders = append([]entity.Order(nil), u.Orders...)
	c.RechargeHistory = append([]entity.RechargeRecord(nil), u.RechargeHistory...)
	c.WithdrawalHistory = append([]entity.WithdrawalRecord(nil), u.WithdrawalHistory...)
	c.Transactions = append([]entity.Transaction(nil), u.Transactions...)
	c.Notifications = append([]entity.Notification(nil), u.Notifications...)
	return &c
}

type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{nextID: 1, products: map[int64]entity.Product{}}
}

func (r *ProductRepository) List(_ context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) Get(_ context.Context, id int64) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now()
	r.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type RequestRepository struct {
	mu          sync.RWMutex
	recharges   map[string]entity.RechargeRecord
	withdrawals map[string]entity.WithdrawalRecord
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		recharges:   map[string]entity.RechargeRecord{},
		withdrawals: map[string]entity.WithdrawalRecord{},
	}
}

func (r *RequestRepository) SaveRecharge(_ context.Context, rec *entity.RechargeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.recharges[rec.ID]; ok && cur.Status != entity.StatusPending {
		return repository.ErrConflict
	}
	r.recharges[rec.ID] = *rec
	return nil
}

func (r *RequestRepository) GetRecharge(_ context.Context, id string) (*entity.RechargeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recharges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *RequestRepository) ListRecharges(_ context.Context, status entity.RequestStatus) ([]entity.RechargeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.RechargeRecord{}
	for _, rec := range r.recharges {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *RequestRepository) SaveWithdrawal(_ context.Context, w *entity.WithdrawalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.withdrawals[w.ID]; ok && cur.Status != entity.StatusPending {
		return repository.ErrConflict
	}
	r.withdrawals[w.ID] = *w
	return nil
}

func (r *RequestRepository) GetWithdrawal(_ context.Context, id string) (*entity.WithdrawalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.withdrawals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *RequestRepository) ListWithdrawals(_ context.Context, status entity.RequestStatus) ([]entity.WithdrawalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.WithdrawalRecord{}
	for _, w := range r.withdrawals {
		if status == "" || w.Status == status {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type sessionEntry struct {
	s         repository.Session
	expiresAt time.Time
}

// SessionStore mirrors the Redis session store for tests and single-node
// development runs.
type SessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now, sessions: map[string]sessionEntry{}}
}

func (s *SessionStore) Save(_ context.Context, sess repository.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := sessionEntry{s: sess}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sess.Phone] = e
	return nil
}

func (s *SessionStore) Get(_ context.Context, phone string) (*repository.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return nil, repository.ErrNotFound
	}
	sess := e.s
	return &sess, nil
}

func (s *SessionStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}

func (s *SessionStore) ActivePhones(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for phone := range s.sessions {
		if _, ok := s.live(phone); ok {
			out = append(out, phone)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *SessionStore) live(phone string) (sessionEntry, bool) {
	e, ok := s.sessions[phone]
	if !ok {
		return e, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.sessions, phone)
		return e, false
	}
	return e, true
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.RequestRepository = (*RequestRepository)(nil)
	_ repository.SessionStore      = (*SessionStore)(nil)
)
