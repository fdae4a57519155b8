package ledger

import (
	"fmt"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// WithdrawalPolicy gates withdrawal submissions. Hours are evaluated in
// Location, the operator's time zone, never the caller's.
type WithdrawalPolicy struct {
	OpenHour  int
	CloseHour int
	Minimum   float64
	Location  *time.Location

	// VerifyPin compares a stored PIN with a submitted one. Nil means
	// plain equality.
	VerifyPin func(stored, submitted string) bool
}

// DefaultWithdrawalPolicy opens withdrawals from 10:00 to 20:00 UTC with a
// minimum of 300.
func DefaultWithdrawalPolicy() WithdrawalPolicy {
	return WithdrawalPolicy{OpenHour: 10, CloseHour: 20, Minimum: 300, Location: time.UTC}
}

// InWindow reports whether now falls in [OpenHour, CloseHour).
func (p WithdrawalPolicy) InWindow(now time.Time) bool {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	h := now.In(loc).Hour()
	return h >= p.OpenHour && h < p.CloseHour
}

func (p WithdrawalPolicy) pinMatches(stored, submitted string) bool {
	if p.VerifyPin != nil {
		return p.VerifyPin(stored, submitted)
	}
	return stored == submitted
}

// SubmitRecharge records a pending deposit claim. The balance is not
// touched until an admin confirms it.
func SubmitRecharge(u *entity.User, amount float64, trxID string, now time.Time) (*entity.RechargeRecord, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	rec := entity.RechargeRecord{
		ID:        NewID(),
		UserPhone: u.Phone,
		Amount:    amount,
		Date:      now,
		Status:    entity.StatusPending,
		TrxID:     trxID,
	}
	u.RechargeHistory = append([]entity.RechargeRecord{rec}, u.RechargeHistory...)
	addTransaction(u, entity.TxRecharge, amount, entity.StatusPending,
		fmt.Sprintf("Recharge request %s", trxID), now)
	return &rec, nil
}

// ResolveRecharge applies an admin decision to a pending recharge owned by
// u. Only Success moves money.
func ResolveRecharge(u *entity.User, rec *entity.RechargeRecord, decision entity.RequestStatus, now time.Time) error {
	own := rec.Status
	for _, h := range u.RechargeHistory {
		if h.ID == rec.ID {
			own = h.Status
			break
		}
	}
	if err := checkResolvable(u, rec.UserPhone, rec.Status, own, decision); err != nil {
		return err
	}
	rec.Status = decision
	at := now
	rec.ResolvedAt = &at
	for i := range u.RechargeHistory {
		if u.RechargeHistory[i].ID == rec.ID {
			u.RechargeHistory[i] = *rec
		}
	}

	if decision == entity.StatusSuccess {
		u.Balance += rec.Amount
		addTransaction(u, entity.TxRecharge, rec.Amount, entity.StatusSuccess, "Recharge approved", now)
		addNotification(u, entity.NotifyRecharge, "Recharge successful",
			fmt.Sprintf("Your recharge of %.2f has been added to your balance.", rec.Amount), now)
		return nil
	}
	addTransaction(u, entity.TxRecharge, rec.Amount, entity.StatusFailed, "Recharge rejected", now)
	addNotification(u, entity.NotifyRecharge, "Recharge failed",
		fmt.Sprintf("Your recharge of %.2f (TrxID %s) could not be verified.", rec.Amount, rec.TrxID), now)
	return nil
}

// SubmitWithdrawal reserves amount from the balance and records a pending
// payout. Preconditions are checked in a fixed order and the first
// failure is returned without mutating u.
func SubmitWithdrawal(u *entity.User, amount float64, account entity.BankAccount, pin string, policy WithdrawalPolicy, now time.Time) (*entity.WithdrawalRecord, error) {
	if !policy.InWindow(now) {
		return nil, ErrOutsideWindow
	}
	if amount < policy.Minimum {
		return nil, ErrBelowMinimum
	}
	if amount > u.Balance {
		return nil, ErrInsufficientBalance
	}
	if u.HasPin() && !policy.pinMatches(u.TransactionPin, pin) {
		return nil, ErrWrongPin
	}

	u.Balance -= amount
	rec := entity.WithdrawalRecord{
		ID:          NewID(),
		UserPhone:   u.Phone,
		Amount:      amount,
		Date:        now,
		Status:      entity.StatusPending,
		BankAccount: account,
	}
	u.WithdrawalHistory = append([]entity.WithdrawalRecord{rec}, u.WithdrawalHistory...)
	addTransaction(u, entity.TxWithdrawal, amount, entity.StatusPending,
		fmt.Sprintf("Withdrawal to %s %s", account.BankName, account.AccountNumber), now)
	return &rec, nil
}

// ResolveWithdrawal applies an admin decision to a pending withdrawal.
// The funds were reserved at submission, so only Failed moves money.
func ResolveWithdrawal(u *entity.User, rec *entity.WithdrawalRecord, decision entity.RequestStatus, now time.Time) error {
	own := rec.Status
	for _, h := range u.WithdrawalHistory {
		if h.ID == rec.ID {
			own = h.Status
			break
		}
	}
	if err := checkResolvable(u, rec.UserPhone, rec.Status, own, decision); err != nil {
		return err
	}
	rec.Status = decision
	at := now
	rec.ResolvedAt = &at
	for i := range u.WithdrawalHistory {
		if u.WithdrawalHistory[i].ID == rec.ID {
			u.WithdrawalHistory[i] = *rec
		}
	}

	if decision == entity.StatusSuccess {
		addTransaction(u, entity.TxWithdrawal, rec.Amount, entity.StatusSuccess, "Withdrawal paid out", now)
		addNotification(u, entity.NotifyWithdrawal, "Withdrawal successful",
			fmt.Sprintf("Your withdrawal of %.2f has been sent.", rec.Amount), now)
		return nil
	}
	u.Balance += rec.Amount
	addTransaction(u, entity.TxWithdrawal, rec.Amount, entity.StatusFailed, "Withdrawal rejected, amount refunded", now)
	addNotification(u, entity.NotifyWithdrawal, "Withdrawal failed",
		fmt.Sprintf("Your withdrawal of %.2f was rejected and refunded to your balance.", rec.Amount), now)
	return nil
}

// checkResolvable requires both the global record and the user's own copy
// to still be Pending; the user's copy is what money moved against.
func checkResolvable(u *entity.User, owner string, current, own, decision entity.RequestStatus) error {
	if !decision.IsDecision() {
		return ErrInvalidDecision
	}
	if u.Phone != owner {
		return ErrRecordOwnerMismatch
	}
	if current != entity.StatusPending || own != entity.StatusPending {
		return ErrAlreadyResolved
	}
	return nil
}
