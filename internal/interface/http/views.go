package handlers

import (
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
)

// userView is the user as the API exposes it; credential hashes never leave
// the service.
type userView struct {
	Phone               string    `json:"phone"`
	Balance             float64   `json:"balance"`
	UncollectedIncome   float64   `json:"uncollectedIncome"`
	Collectible         float64   `json:"collectible"`
	TotalIncome         float64   `json:"totalIncome"`
	VIPLevel            int       `json:"vipLevel"`
	ReferralCode        string    `json:"referralCode"`
	ReferredBy          string    `json:"referredBy,omitempty"`
	TeamSize            int       `json:"teamSize"`
	TeamIncome          float64   `json:"teamIncome"`
	HasPin              bool      `json:"hasPin"`
	IsAdmin             bool      `json:"isAdmin"`
	LastCheckIn         string    `json:"lastCheckIn,omitempty"`
	UnreadNotifications int       `json:"unreadNotifications"`
	ActiveOrders        int       `json:"activeOrders"`
	CreatedAt           time.Time `json:"createdAt"`
}

func toUserView(u *entity.User) userView {
	active := 0
	for _, o := range u.Orders {
		if o.Status == entity.OrderActive {
			active++
		}
	}
	return userView{
		Phone:               u.Phone,
		Balance:             u.Balance,
		UncollectedIncome:   u.UncollectedIncome,
		Collectible:         ledger.Collectible(u),
		TotalIncome:         u.TotalIncome,
		VIPLevel:            u.VIPLevel,
		ReferralCode:        u.ReferralCode,
		ReferredBy:          u.ReferredBy,
		TeamSize:            u.TeamSize,
		TeamIncome:          u.TeamIncome,
		HasPin:              u.HasPin(),
		IsAdmin:             u.IsAdmin,
		LastCheckIn:         u.LastCheckIn,
		UnreadNotifications: u.UnreadNotifications(),
		ActiveOrders:        active,
		CreatedAt:           u.CreatedAt,
	}
}
