package ledger

import (
	"fmt"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// tiers are ordered from highest to lowest; the first match wins.
var tiers = []struct {
	min   float64
	level int
}{
	{50000, 5},
	{20000, 4},
	{10000, 3},
	{5000, 2},
}

// TierFor maps a cumulative invested amount to a VIP level.
func TierFor(invested float64) int {
	for _, t := range tiers {
		if invested >= t.min {
			return t.level
		}
	}
	return 1
}

// TotalInvested sums the price of every order regardless of status.
func TotalInvested(u *entity.User, econ Economics) float64 {
	total := 0.0
	for _, o := range u.Orders {
		total += econ.Price(o)
	}
	return total
}

// Reclassify recomputes the user's VIP level and reports whether it
// changed. A change is announced with a system notification.
func Reclassify(u *entity.User, econ Economics, now time.Time) bool {
	level := TierFor(TotalInvested(u, econ))
	if level == u.VIPLevel {
		return false
	}
	u.VIPLevel = level
	addNotification(u, entity.NotifySystem, "VIP level updated",
		fmt.Sprintf("Your VIP level is now VIP %d.", level), now)
	return true
}
