package ledger

import "github.com/oksasatya/solargrowth/internal/domain/entity"

// Catalog indexes products by id.
type Catalog map[int64]entity.Product

func NewCatalog(products []entity.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Economics resolves the price and daily income of an order. With Live
// set, values come from the current catalog and an order whose product
// no longer exists is worth zero. Otherwise the values captured on the
// order at purchase time are used.
type Economics struct {
	Catalog Catalog
	Live    bool
}

func (e Economics) DailyIncome(o entity.Order) float64 {
	if e.Live {
		p, ok := e.Catalog[o.ProductID]
		if !ok {
			return 0
		}
		return p.DailyIncome
	}
	return o.DailyIncome
}

func (e Economics) Price(o entity.Order) float64 {
	if e.Live {
		p, ok := e.Catalog[o.ProductID]
		if !ok {
			return 0
		}
		return p.Price
	}
	return o.Price
}
