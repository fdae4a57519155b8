package entity

import (
	"time"
)

// User is the aggregate root of the ledger. Every balance-affecting event
// is recorded on the user it affects.
//
// Password and TransactionPin hold bcrypt hashes.
type User struct {
	Phone             string  `json:"phone"`
	Password          string  `json:"password"`
	TransactionPin    string  `json:"transactionPin,omitempty"`
	IsAdmin           bool    `json:"isAdmin"`
	Balance           float64 `json:"balance"`
	UncollectedIncome float64 `json:"uncollectedIncome"`
	TotalIncome       float64 `json:"totalIncome"`
	VIPLevel          int     `json:"vipLevel"`
	ReferralCode      string  `json:"referralCode"`
	ReferredBy        string  `json:"referredBy,omitempty"`
	TeamSize          int     `json:"teamSize"`
	TeamIncome        float64 `json:"teamIncome"`

	Orders            []Order            `json:"orders"`
	RechargeHistory   []RechargeRecord   `json:"rechargeHistory"`
	WithdrawalHistory []WithdrawalRecord `json:"withdrawalHistory"`
	Transactions      []Transaction      `json:"transactions"`
	Notifications     []Notification     `json:"notifications"`

	LastCheckIn string    `json:"lastCheckIn,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasOrders reports whether the user owns at least one order.
func (u *User) HasOrders() bool { return len(u.Orders) > 0 }

// HasPin reports whether withdrawals are gated by a transaction PIN.
func (u *User) HasPin() bool { return u.TransactionPin != "" }

// UnreadNotifications counts notifications not yet viewed.
func (u *User) UnreadNotifications() int {
	n := 0
	for _, m := range u.Notifications {
		if !m.Read {
			n++
		}
	}
	return n
}
