package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

const (
	SecondsPerDay = 86400

	// MinCollectible is the smallest uncollected amount Collect accepts.
	MinCollectible = 1.0
)

// floatNoise is the number of decimal places kept before truncating to
// cents, so a full day of per-second ticks pays the exact daily income.
// The payout can exceed the raw accrual by at most 5e-9.
const floatNoise = 8

// DailyIncome sums the daily income of the user's active orders.
func DailyIncome(u *entity.User, econ Economics) float64 {
	total := 0.0
	for _, o := range u.Orders {
		if o.Status != entity.OrderActive {
			continue
		}
		total += econ.DailyIncome(o)
	}
	return total
}

// Tick accrues one second of income into UncollectedIncome and returns the
// amount added.
func Tick(u *entity.User, econ Economics) float64 {
	perSecond := DailyIncome(u, econ) / SecondsPerDay
	u.UncollectedIncome += perSecond
	return perSecond
}

// Collectible returns the amount Collect would pay out: the uncollected
// income truncated (not rounded) to two decimal places.
func Collectible(u *entity.User) float64 {
	d := decimal.NewFromFloat(u.UncollectedIncome).Round(floatNoise).Truncate(2)
	f, _ := d.Float64()
	return f
}

// Collect moves uncollected income into the spendable balance.
func Collect(u *entity.User, now time.Time) (float64, error) {
	// threshold on the raw value; only the payout absorbs float noise
	if u.UncollectedIncome < MinCollectible {
		return 0, ErrNothingToCollect
	}
	amount := Collectible(u)

	u.Balance += amount
	u.TotalIncome += amount
	u.UncollectedIncome = 0
	for i := range u.Orders {
		if u.Orders[i].Status == entity.OrderActive {
			at := now
			u.Orders[i].LastCollectionDate = &at
		}
	}
	addTransaction(u, entity.TxIncome, amount, entity.StatusSuccess, "Mining income collected", now)
	return amount, nil
}
