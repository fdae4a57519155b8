// Package ledger holds the balance state machine: income accrual, VIP
// tiers, referral commissions and the recharge/withdrawal lifecycle.
//
// Functions here mutate the *entity.User values they are given and never
// perform I/O. Callers are responsible for persisting the result.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

var (
	ErrNothingToCollect    = errors.New("nothing to collect")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrOutsideWindow       = errors.New("withdrawals are closed at this time")
	ErrWrongPin            = errors.New("wrong transaction pin")
	ErrAlreadyResolved     = errors.New("request already resolved")
	ErrInvalidDecision     = errors.New("decision must be Success or Failed")
	ErrRecordOwnerMismatch = errors.New("record does not belong to user")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// NewID returns a fresh record identifier.
func NewID() string { return uuid.NewString() }

func addTransaction(u *entity.User, typ entity.TransactionType, amount float64, status entity.RequestStatus, desc string, now time.Time) entity.Transaction {
	tx := entity.Transaction{
		ID:          NewID(),
		Type:        typ,
		Amount:      amount,
		Date:        now,
		Status:      status,
		Description: desc,
	}
	u.Transactions = append([]entity.Transaction{tx}, u.Transactions...)
	return tx
}

func addNotification(u *entity.User, typ entity.NotificationType, title, msg string, now time.Time) entity.Notification {
	n := entity.Notification{
		ID:      NewID(),
		Title:   title,
		Message: msg,
		Date:    now,
		Type:    typ,
	}
	u.Notifications = append([]entity.Notification{n}, u.Notifications...)
	return n
}

// MarkNotificationsRead flips every notification to read and returns how
// many changed.
func MarkNotificationsRead(u *entity.User) int {
	n := 0
	for i := range u.Notifications {
		if !u.Notifications[i].Read {
			u.Notifications[i].Read = true
			n++
		}
	}
	return n
}

// Notify prepends a notification outside the ledger's own flows, such as an
// admin correction.
func Notify(u *entity.User, typ entity.NotificationType, title, msg string, now time.Time) entity.Notification {
	return addNotification(u, typ, title, msg, now)
}
