package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

type RequestRepository struct {
	db dbtx
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: pool}
}

// guarded maps an upsert that touched no row, because the existing record
// already left Pending, to ErrConflict.
func guarded(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *RequestRepository) SaveRecharge(ctx context.Context, rec *entity.RechargeRecord) error {
	return guarded(r.db.Exec(ctx, `
		INSERT INTO recharge_requests (id, user_phone, amount, trx_id, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, resolved_at = EXCLUDED.resolved_at
		WHERE recharge_requests.status = 'Pending'
	`, rec.ID, rec.UserPhone, rec.Amount, rec.TrxID, string(rec.Status), rec.Date, rec.ResolvedAt))
}

const rechargeColumns = `id, user_phone, amount, trx_id, status, created_at, resolved_at`

func scanRecharge(row pgx.Row) (*entity.RechargeRecord, error) {
	rec := &entity.RechargeRecord{}
	var status string
	if err := row.Scan(&rec.ID, &rec.UserPhone, &rec.Amount, &rec.TrxID, &status, &rec.Date, &rec.ResolvedAt); err != nil {
		return nil, err
	}
	rec.Status = entity.RequestStatus(status)
	return rec, nil
}

func (r *RequestRepository) GetRecharge(ctx context.Context, id string) (*entity.RechargeRecord, error) {
	rec, err := scanRecharge(r.db.QueryRow(ctx, `SELECT `+rechargeColumns+` FROM recharge_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *RequestRepository) ListRecharges(ctx context.Context, status entity.RequestStatus) ([]entity.RechargeRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+rechargeColumns+` FROM recharge_requests
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.RechargeRecord{}
	for rows.Next() {
		rec, err := scanRecharge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *RequestRepository) SaveWithdrawal(ctx context.Context, w *entity.WithdrawalRecord) error {
	return guarded(r.db.Exec(ctx, `
		INSERT INTO withdrawal_requests (id, user_phone, amount, bank_name, account_number, holder_name, status, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, resolved_at = EXCLUDED.resolved_at
		WHERE withdrawal_requests.status = 'Pending'
	`, w.ID, w.UserPhone, w.Amount, w.BankName, w.AccountNumber, w.HolderName, string(w.Status), w.Date, w.ResolvedAt))
}

const withdrawalColumns = `id, user_phone, amount, bank_name, account_number, holder_name, status, created_at, resolved_at`

func scanWithdrawal(row pgx.Row) (*entity.WithdrawalRecord, error) {
	w := &entity.WithdrawalRecord{}
	var status string
	if err := row.Scan(&w.ID, &w.UserPhone, &w.Amount, &w.BankName, &w.AccountNumber, &w.HolderName,
		&status, &w.Date, &w.ResolvedAt); err != nil {
		return nil, err
	}
	w.Status = entity.RequestStatus(status)
	return w, nil
}

func (r *RequestRepository) GetWithdrawal(ctx context.Context, id string) (*entity.WithdrawalRecord, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *RequestRepository) ListWithdrawals(ctx context.Context, status entity.RequestStatus) ([]entity.WithdrawalRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawal_requests
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.WithdrawalRecord{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

var _ repository.RequestRepository = (*RequestRepository)(nil)
