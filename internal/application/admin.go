package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

type DashboardStats struct {
	TotalUsers              int     `json:"totalUsers"`
	ActiveProducts          int     `json:"activeProducts"`
	TotalDeposits           float64 `json:"totalDeposits"`
	TotalPayouts            float64 `json:"totalPayouts"`
	PendingRecharges        int     `json:"pendingRecharges"`
	PendingRechargeAmount   float64 `json:"pendingRechargeAmount"`
	PendingWithdrawals      int     `json:"pendingWithdrawals"`
	PendingWithdrawalAmount float64 `json:"pendingWithdrawalAmount"`
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	recharges, err := s.Requests.ListRecharges(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list recharges: %w", err)
	}
	withdrawals, err := s.Requests.ListWithdrawals(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}

	st := &DashboardStats{TotalUsers: len(users), ActiveProducts: len(products)}
	for _, r := range recharges {
		switch r.Status {
		case entity.StatusSuccess:
			st.TotalDeposits += r.Amount
		case entity.StatusPending:
			st.PendingRecharges++
			st.PendingRechargeAmount += r.Amount
		}
	}
	for _, w := range withdrawals {
		switch w.Status {
		case entity.StatusSuccess:
			st.TotalPayouts += w.Amount
		case entity.StatusPending:
			st.PendingWithdrawals++
			st.PendingWithdrawalAmount += w.Amount
		}
	}
	return st, nil
}

func (s *Service) ListRecharges(ctx context.Context, status entity.RequestStatus) ([]entity.RechargeRecord, error) {
	if status != "" && !status.Valid() {
		return nil, ledger.ErrInvalidDecision
	}
	return s.Requests.ListRecharges(ctx, status)
}

func (s *Service) ListWithdrawals(ctx context.Context, status entity.RequestStatus) ([]entity.WithdrawalRecord, error) {
	if status != "" && !status.Valid() {
		return nil, ledger.ErrInvalidDecision
	}
	return s.Requests.ListWithdrawals(ctx, status)
}

// ResolveRecharge applies an admin decision. A request that already left
// Pending is rejected with ledger.ErrAlreadyResolved.
func (s *Service) ResolveRecharge(ctx context.Context, id string, in DecisionInput) (*entity.RechargeRecord, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.Requests.GetRecharge(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load recharge: %w", err)
	}
	u, err := s.loadUser(ctx, rec.UserPhone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := ledger.ResolveRecharge(u, rec, in.Status, now); err != nil {
		return nil, err
	}
	err = s.commitRequest(ctx, u, func(ctx context.Context, requests repo.RequestRepository) error {
		if err := requests.SaveRecharge(ctx, rec); err != nil {
			return fmt.Errorf("save recharge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithField("recharge_id", rec.ID).WithField("phone", u.Phone).WithField("status", rec.Status).Info("recharge resolved")
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventRechargeResolved, Phone: u.Phone, Amount: rec.Amount, RecordID: rec.ID, Status: string(rec.Status), At: now})
	return rec, nil
}

// ResolveWithdrawal applies an admin decision; Failed refunds the reserved
// amount.
func (s *Service) ResolveWithdrawal(ctx context.Context, id string, in DecisionInput) (*entity.WithdrawalRecord, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.Requests.GetWithdrawal(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load withdrawal: %w", err)
	}
	u, err := s.loadUser(ctx, rec.UserPhone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := ledger.ResolveWithdrawal(u, rec, in.Status, now); err != nil {
		return nil, err
	}
	err = s.commitRequest(ctx, u, func(ctx context.Context, requests repo.RequestRepository) error {
		if err := requests.SaveWithdrawal(ctx, rec); err != nil {
			return fmt.Errorf("save withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithField("withdrawal_id", rec.ID).WithField("phone", u.Phone).WithField("status", rec.Status).Info("withdrawal resolved")
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventWithdrawalResolved, Phone: u.Phone, Amount: rec.Amount, RecordID: rec.ID, Status: string(rec.Status), At: now})
	return rec, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	p := &entity.Product{}
	in.apply(p)
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// UpdateProduct edits a catalog entry. Existing orders keep their purchase
// snapshot unless live economics is enabled.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*entity.Product, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	p, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.Products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// UploadProductImage stores the image in GCS and points the product at it.
func (s *Service) UploadProductImage(ctx context.Context, id int64, r io.Reader, filename, contentType string) (*entity.Product, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrStorageDisabled
	}
	p, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, helpers.ProductImagePath(id, filename), contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	p.Image = url
	if err := s.Products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *Service) getProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

// AdjustUser applies an admin correction and runs a reconciliation pass.
func (s *Service) AdjustUser(ctx context.Context, phone string, in AdjustUserInput) (*entity.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.Balance != nil && *in.Balance != u.Balance {
		msg := fmt.Sprintf("Your balance was adjusted from %.2f to %.2f.", u.Balance, *in.Balance)
		if in.Note != "" {
			msg += " " + in.Note
		}
		u.Balance = *in.Balance
		ledger.Notify(u, entity.NotifySystem, "Balance adjusted", msg, now)
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}
	if in.ClearPin {
		u.TransactionPin = ""
	}
	econ, err := s.economics(ctx)
	if err != nil {
		return nil, err
	}
	ledger.Reclassify(u, econ, now)
	if err := s.saveUser(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithField("phone", u.Phone).Info("user adjusted by admin")
	return u, nil
}
