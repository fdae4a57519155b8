package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

var noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func solar1() entity.Product {
	return entity.Product{ID: 1, Name: "Solar Panel 1", Price: 1000, DailyIncome: 100, TotalIncome: 10000, Validity: 100, Category: entity.CategorySolar}
}

func userWithOrders(products ...entity.Product) *entity.User {
	u := &entity.User{Phone: "01700000000", VIPLevel: 1}
	for _, p := range products {
		u.Orders = append(u.Orders, entity.Order{ID: NewID(), ProductID: p.ID, Price: p.Price, DailyIncome: p.DailyIncome, Status: entity.OrderActive})
	}
	return u
}

func TestTickAccumulatesLinearly(t *testing.T) {
	p := solar1()
	u := userWithOrders(p)
	econ := Economics{Catalog: NewCatalog([]entity.Product{p})}

	prev := 0.0
	for i := 0; i < 36; i++ {
		Tick(u, econ)
		require.GreaterOrEqual(t, u.UncollectedIncome, prev)
		prev = u.UncollectedIncome
	}
	assert.InDelta(t, 36*100.0/SecondsPerDay, u.UncollectedIncome, 1e-12)
	assert.InDelta(t, 0.04167, u.UncollectedIncome, 1e-5)
}

func TestTickSkipsCompletedAndUnresolvedOrders(t *testing.T) {
	p := solar1()
	u := userWithOrders(p)
	u.Orders = append(u.Orders, entity.Order{ID: "done", ProductID: 1, DailyIncome: 100, Status: entity.OrderCompleted})
	u.Orders = append(u.Orders, entity.Order{ID: "gone", ProductID: 99, DailyIncome: 500, Status: entity.OrderActive})

	live := Economics{Catalog: NewCatalog([]entity.Product{p}), Live: true}
	assert.Equal(t, 100.0, DailyIncome(u, live))

	snapshot := Economics{Catalog: NewCatalog([]entity.Product{p})}
	assert.Equal(t, 600.0, DailyIncome(u, snapshot))
}

func TestLiveEconomicsFollowsCatalogEdits(t *testing.T) {
	p := solar1()
	u := userWithOrders(p)
	p.DailyIncome = 200
	cat := NewCatalog([]entity.Product{p})

	assert.Equal(t, 200.0, DailyIncome(u, Economics{Catalog: cat, Live: true}))
	assert.Equal(t, 100.0, DailyIncome(u, Economics{Catalog: cat}))
}

func TestCollectTruncatesAndZeroes(t *testing.T) {
	u := userWithOrders(solar1())
	u.Balance = 5
	u.UncollectedIncome = 12.3456

	amount, err := Collect(u, noon)
	require.NoError(t, err)
	assert.Equal(t, 12.34, amount)
	assert.InDelta(t, 17.34, u.Balance, 1e-9)
	assert.InDelta(t, 12.34, u.TotalIncome, 1e-9)
	assert.Zero(t, u.UncollectedIncome)
	require.Len(t, u.Transactions, 1)
	assert.Equal(t, entity.TxIncome, u.Transactions[0].Type)
	assert.Equal(t, entity.StatusSuccess, u.Transactions[0].Status)
	assert.Equal(t, "Mining income collected", u.Transactions[0].Description)
	require.NotNil(t, u.Orders[0].LastCollectionDate)
	assert.Equal(t, noon, *u.Orders[0].LastCollectionDate)
}

func TestCollectBelowThresholdIsNoop(t *testing.T) {
	u := userWithOrders(solar1())
	u.Balance = 10
	u.UncollectedIncome = 0.5

	amount, err := Collect(u, noon)
	require.ErrorIs(t, err, ErrNothingToCollect)
	assert.Zero(t, amount)
	assert.Equal(t, 0.5, u.UncollectedIncome)
	assert.Equal(t, 10.0, u.Balance)
	assert.Empty(t, u.Transactions)
}

func TestCollectThresholdUsesRawAccrual(t *testing.T) {
	u := &entity.User{UncollectedIncome: 0.999999996}
	amount, err := Collect(u, noon)
	require.ErrorIs(t, err, ErrNothingToCollect)
	assert.Zero(t, amount)
	assert.Zero(t, u.Balance)

	u.UncollectedIncome = 1
	amount, err = Collect(u, noon)
	require.NoError(t, err)
	assert.Equal(t, 1.0, amount)
}

func TestCollectAfterFullDayPaysExactDailyIncome(t *testing.T) {
	p := solar1()
	u := userWithOrders(p)
	econ := Economics{Catalog: NewCatalog([]entity.Product{p})}
	for i := 0; i < SecondsPerDay; i++ {
		Tick(u, econ)
	}

	amount, err := Collect(u, noon)
	require.NoError(t, err)
	assert.Equal(t, 100.0, amount)
	assert.Equal(t, 100.0, u.Balance)
	assert.Equal(t, 100.0, u.TotalIncome)
}
