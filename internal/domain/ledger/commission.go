package ledger

import (
	"fmt"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// CommissionRates are paid to the buyer's referrer, the referrer's
// referrer and so on, one rate per level.
var CommissionRates = [3]float64{0.10, 0.05, 0.02}

// Directory resolves a referral code to its owner.
type Directory func(code string) (*entity.User, bool)

// Credit is one commission payment made by PropagateCommission.
type Credit struct {
	Level  int
	User   *entity.User
	Amount float64
}

// PropagateCommission walks up the buyer's referral chain and credits each
// ancestor with its level's share of price. The walk stops at the first
// code that does not resolve, at a repeated ancestor, or after the last
// level.
func PropagateCommission(buyer *entity.User, price float64, dir Directory, now time.Time) []Credit {
	var credits []Credit
	seen := map[string]bool{buyer.Phone: true}
	code := buyer.ReferredBy
	for i, rate := range CommissionRates {
		if code == "" {
			break
		}
		ancestor, ok := dir(code)
		if !ok || ancestor == nil || seen[ancestor.Phone] {
			break
		}
		seen[ancestor.Phone] = true

		level := i + 1
		bonus := price * rate
		ancestor.Balance += bonus
		ancestor.TeamIncome += bonus
		addTransaction(ancestor, entity.TxBonus, bonus, entity.StatusSuccess,
			fmt.Sprintf("Level %d Commission from %s", level, buyer.Phone), now)
		credits = append(credits, Credit{Level: level, User: ancestor, Amount: bonus})

		code = ancestor.ReferredBy
	}
	return credits
}

// CreditReferralBonus pays the flat sign-up reward to the direct referrer
// of a newly registered user.
func CreditReferralBonus(referrer, newUser *entity.User, bonus float64, now time.Time) {
	referrer.Balance += bonus
	referrer.TeamSize++
	addTransaction(referrer, entity.TxBonus, bonus, entity.StatusSuccess,
		fmt.Sprintf("Referral bonus for %s", newUser.Phone), now)
}
