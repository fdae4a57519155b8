package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

var (
	// ErrNotFound is returned by every repository when a lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a guarded write finds the row has
	// already moved past the state the caller loaded.
	ErrConflict = errors.New("conflicting write")
)

// Transactor runs fn with repositories bound to one unit of work. Every
// write made through them is kept when fn returns nil and none is kept
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, users UserRepository, requests RequestRepository) error) error
}

// UserRepository stores the all-users snapshot, one aggregate per phone.
type UserRepository interface {
	Get(ctx context.Context, phone string) (*entity.User, error)
	GetByReferralCode(ctx context.Context, code string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Upsert(ctx context.Context, u *entity.User) error
	// UpsertMany writes all users or none of them.
	UpsertMany(ctx context.Context, users []*entity.User) error
}

// ProductRepository holds the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]entity.Product, error)
	Get(ctx context.Context, id int64) (*entity.Product, error)
	// Create assigns p.ID.
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
}

// RequestRepository is the platform-wide collection of recharge and
// withdrawal requests that admins work through. An empty status lists all.
// Save inserts a new record or moves a Pending one to its decision; saving
// over a record that already left Pending returns ErrConflict.
type RequestRepository interface {
	SaveRecharge(ctx context.Context, r *entity.RechargeRecord) error
	GetRecharge(ctx context.Context, id string) (*entity.RechargeRecord, error)
	ListRecharges(ctx context.Context, status entity.RequestStatus) ([]entity.RechargeRecord, error)

	SaveWithdrawal(ctx context.Context, w *entity.WithdrawalRecord) error
	GetWithdrawal(ctx context.Context, id string) (*entity.WithdrawalRecord, error)
	ListWithdrawals(ctx context.Context, status entity.RequestStatus) ([]entity.WithdrawalRecord, error)
}

// Session is the marker of an authenticated user.
type Session struct {
	Phone     string
	SID       string
	IsAdmin   bool
	CreatedAt time.Time
}

// SessionStore keeps at most one active session per user.
type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*Session, error)
	Delete(ctx context.Context, phone string) error
	// ActivePhones lists users with a live session.
	ActivePhones(ctx context.Context) ([]string, error)
}
