package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

// reconcile re-derives the VIP tier and persists the user if it moved.
// Callers hold mu.
func (s *Service) reconcile(ctx context.Context, u *entity.User) error {
	econ, err := s.economics(ctx)
	if err != nil {
		return err
	}
	if ledger.Reclassify(u, econ, s.now()) {
		return s.saveUser(ctx, u)
	}
	return nil
}

// Profile returns the user's current state after a reconciliation pass.
func (s *Service) Profile(ctx context.Context, phone string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	if err := s.reconcile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, phone string, in UpdateProfileInput) (*entity.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	if in.Password != "" {
		if u.Password, err = helpers.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if in.TransactionPin != "" {
		if u.TransactionPin, err = helpers.HashPassword(in.TransactionPin); err != nil {
			return nil, err
		}
	}
	if err := s.saveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Catalog lists the products on sale.
func (s *Service) Catalog(ctx context.Context) ([]entity.Product, error) {
	return s.Products.List(ctx)
}

// Buy purchases a product, reclassifies the buyer and pays commission up
// the referral chain. Buyer and credited ancestors are written together.
func (s *Service) Buy(ctx context.Context, phone string, in BuyInput) (*entity.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	now := s.now()
	order, err := ledger.Purchase(u, *p, now)
	if err != nil {
		return nil, err
	}
	econ, err := s.economics(ctx)
	if err != nil {
		return nil, err
	}
	ledger.Reclassify(u, econ, now)

	dir := s.directory(ctx)
	credits := ledger.PropagateCommission(u, p.Price, dir, now)

	touched := []*entity.User{u}
	for _, c := range credits {
		touched = append(touched, c.User)
	}
	if err := s.saveUsers(ctx, touched...); err != nil {
		return nil, err
	}

	s.Logger.WithField("phone", u.Phone).WithField("product_id", p.ID).WithField("commission_levels", len(credits)).Info("order purchased")
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventOrderPurchased, Phone: u.Phone, Amount: p.Price, RecordID: order.ID, At: now})
	return order, nil
}

// OrderView pairs an order with its product details for display.
type OrderView struct {
	entity.Order
	ProductName string  `json:"productName"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Income      float64 `json:"currentDailyIncome"`
}

func (s *Service) Orders(ctx context.Context, phone string) ([]OrderView, error) {
	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog := ledger.NewCatalog(products)
	econ := ledger.Economics{Catalog: catalog, Live: s.Rules.LiveEconomics}

	out := make([]OrderView, 0, len(u.Orders))
	for _, o := range u.Orders {
		v := OrderView{Order: o, Income: econ.DailyIncome(o)}
		if p, ok := catalog[o.ProductID]; ok {
			v.ProductName = p.Name
			v.Category = string(p.Category)
			v.Image = p.Image
		}
		out = append(out, v)
	}
	return out, nil
}

// CollectIncome moves the user's uncollected income into the balance.
func (s *Service) CollectIncome(ctx context.Context, phone string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return 0, err
	}
	now := s.now()
	amount, err := ledger.Collect(u, now)
	if err != nil {
		return 0, err
	}
	if err := s.saveUser(ctx, u); err != nil {
		return 0, err
	}
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventIncomeCollected, Phone: u.Phone, Amount: amount, At: now})
	return amount, nil
}

// DailyCheckIn pays the daily bonus once per operator calendar day.
func (s *Service) DailyCheckIn(ctx context.Context, phone string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return 0, err
	}
	now := s.now()
	if err := ledger.CheckIn(u, s.Rules.CheckInBonus, s.Rules.Location, now); err != nil {
		return 0, err
	}
	if err := s.saveUser(ctx, u); err != nil {
		return 0, err
	}
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventCheckIn, Phone: u.Phone, Amount: s.Rules.CheckInBonus, At: now})
	return s.Rules.CheckInBonus, nil
}

func (s *Service) SubmitRecharge(ctx context.Context, phone string, in RechargeInput) (*entity.RechargeRecord, error) {
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
	rec, err := ledger.SubmitRecharge(u, in.Amount, in.TrxID, now)
	if err != nil {
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
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventRechargeSubmitted, Phone: u.Phone, Amount: rec.Amount, RecordID: rec.ID, Status: string(rec.Status), At: now})
	return rec, nil
}

func (s *Service) SubmitWithdrawal(ctx context.Context, phone string, in WithdrawalInput) (*entity.WithdrawalRecord, error) {
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
	rec, err := ledger.SubmitWithdrawal(u, in.Amount, in.account(), in.Pin, s.Rules.Withdrawal, now)
	if err != nil {
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
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventWithdrawalSubmitted, Phone: u.Phone, Amount: rec.Amount, RecordID: rec.ID, Status: string(rec.Status), At: now})
	return rec, nil
}

func (s *Service) Recharges(ctx context.Context, phone string) ([]entity.RechargeRecord, error) {
	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	return u.RechargeHistory, nil
}

func (s *Service) Withdrawals(ctx context.Context, phone string) ([]entity.WithdrawalRecord, error) {
	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	return u.WithdrawalHistory, nil
}

func (s *Service) Transactions(ctx context.Context, phone string) ([]entity.Transaction, error) {
	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	return u.Transactions, nil
}

// Notifications returns the user's notifications as they were before this
// view and marks them all read.
func (s *Service) Notifications(ctx context.Context, phone string) ([]entity.Notification, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, 0, err
	}
	list := append([]entity.Notification(nil), u.Notifications...)
	unread := ledger.MarkNotificationsRead(u)
	if unread > 0 {
		if err := s.saveUser(ctx, u); err != nil {
			return nil, 0, err
		}
	}
	return list, unread, nil
}

type TeamMember struct {
	Phone     string    `json:"phone"`
	VIPLevel  int       `json:"vipLevel"`
	Orders    int       `json:"orders"`
	CreatedAt time.Time `json:"createdAt"`
}

type TeamView struct {
	ReferralCode string       `json:"referralCode"`
	InviteLink   string       `json:"inviteLink"`
	TeamSize     int          `json:"teamSize"`
	TeamIncome   float64      `json:"teamIncome"`
	Members      []TeamMember `json:"members"`
}

// Team lists the user's direct referrals with the team counters.
func (s *Service) Team(ctx context.Context, phone string) (*TeamView, error) {
	u, err := s.loadUser(ctx, phone)
	if err != nil {
		return nil, err
	}
	all, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	view := &TeamView{
		ReferralCode: u.ReferralCode,
		InviteLink:   helpers.InviteLink(s.Rules.InviteBaseURL, u.ReferralCode),
		TeamSize:     u.TeamSize,
		TeamIncome:   u.TeamIncome,
		Members:      []TeamMember{},
	}
	for _, m := range all {
		if m.ReferredBy != "" && m.ReferredBy == u.ReferralCode {
			view.Members = append(view.Members, TeamMember{
				Phone:     m.Phone,
				VIPLevel:  m.VIPLevel,
				Orders:    len(m.Orders),
				CreatedAt: m.CreatedAt,
			})
		}
	}
	return view, nil
}
