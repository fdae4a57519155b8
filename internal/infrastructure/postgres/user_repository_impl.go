package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

// UserRepository stores each user aggregate as one JSONB document. The
// phone and referral code are lifted into columns for lookups.
type UserRepository struct {
	db dbtx
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

const upsertUserSQL = `
	INSERT INTO users (phone, referral_code, referred_by, is_admin, data, created_at, updated_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
	ON CONFLICT (phone) DO UPDATE
	SET referral_code = EXCLUDED.referral_code,
	    referred_by   = EXCLUDED.referred_by,
	    is_admin      = EXCLUDED.is_admin,
	    data          = EXCLUDED.data,
	    updated_at    = EXCLUDED.updated_at
`

func (r *UserRepository) Get(ctx context.Context, phone string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT data FROM users WHERE phone = $1`, phone)
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT data FROM users WHERE referral_code = $1`, code)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, query, arg).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u := &entity.User{}
	if err := json.Unmarshal(raw, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT data FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.User{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		u := &entity.User{}
		if err := json.Unmarshal(raw, u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	args, err := upsertArgs(u, time.Now())
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, upsertUserSQL, args...)
	return err
}

func (r *UserRepository) UpsertMany(ctx context.Context, users []*entity.User) error {
	now := time.Now()
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range users {
			args, err := upsertArgs(u, now)
			if err != nil {
				return err
			}
			batch.Queue(upsertUserSQL, args...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func upsertArgs(u *entity.User, now time.Time) ([]any, error) {
	u.UpdatedAt = now
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return []any{u.Phone, u.ReferralCode, u.ReferredBy, u.IsAdmin, data, u.CreatedAt, u.UpdatedAt}, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
