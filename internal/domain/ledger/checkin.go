package ledger

import (
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

const dayLayout = "2006-01-02"

// CheckIn pays the daily bonus at most once per calendar day in loc.
func CheckIn(u *entity.User, bonus float64, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.UTC
	}
	day := now.In(loc).Format(dayLayout)
	if u.LastCheckIn == day {
		return ErrAlreadyCheckedIn
	}
	u.LastCheckIn = day
	u.Balance += bonus
	addTransaction(u, entity.TxBonus, bonus, entity.StatusSuccess, "Daily check-in bonus", now)
	return nil
}
