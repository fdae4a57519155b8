package ledger

import (
	"fmt"
	"time"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// Purchase debits the product price and appends an active order. It fails
// only when the balance does not cover the price.
func Purchase(u *entity.User, p entity.Product, now time.Time) (*entity.Order, error) {
	if p.Price <= 0 {
		return nil, ErrInvalidAmount
	}
	if u.Balance < p.Price {
		return nil, ErrInsufficientBalance
	}
	u.Balance -= p.Price
	o := entity.Order{
		ID:           NewID(),
		ProductID:    p.ID,
		Price:        p.Price,
		DailyIncome:  p.DailyIncome,
		PurchaseDate: now,
		Status:       entity.OrderActive,
	}
	u.Orders = append(u.Orders, o)
	addTransaction(u, entity.TxPurchase, p.Price, entity.StatusSuccess,
		fmt.Sprintf("Purchased %s", p.Name), now)
	return &o, nil
}
