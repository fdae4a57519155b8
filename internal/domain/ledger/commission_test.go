package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

func directory(users ...*entity.User) Directory {
	byCode := map[string]*entity.User{}
	for _, u := range users {
		byCode[u.ReferralCode] = u
	}
	return func(code string) (*entity.User, bool) {
		u, ok := byCode[code]
		return u, ok
	}
}

func chain() (a, b, c, d *entity.User) {
	a = &entity.User{Phone: "A", ReferralCode: "100001"}
	b = &entity.User{Phone: "B", ReferralCode: "100002", ReferredBy: "100001"}
	c = &entity.User{Phone: "C", ReferralCode: "100003", ReferredBy: "100002"}
	d = &entity.User{Phone: "D", ReferralCode: "100004", ReferredBy: "100003"}
	return
}

func TestPropagateCommissionThreeLevels(t *testing.T) {
	a, b, c, d := chain()
	credits := PropagateCommission(d, 1000, directory(a, b, c, d), noon)

	require.Len(t, credits, 3)
	assert.InDelta(t, 100, c.Balance, 1e-9)
	assert.InDelta(t, 50, b.Balance, 1e-9)
	assert.InDelta(t, 20, a.Balance, 1e-9)
	assert.InDelta(t, 100, c.TeamIncome, 1e-9)

	for level, u := range []*entity.User{c, b, a} {
		require.Len(t, u.Transactions, 1)
		tx := u.Transactions[0]
		assert.Equal(t, entity.TxBonus, tx.Type)
		assert.Equal(t, fmt.Sprintf("Level %d Commission from D", level+1), tx.Description)
	}
	assert.Empty(t, d.Transactions)
	assert.Zero(t, d.Balance)
}

func TestPropagateCommissionStopsAtThreeLevels(t *testing.T) {
	a, b, c, d := chain()
	root := &entity.User{Phone: "R", ReferralCode: "100000"}
	a.ReferredBy = root.ReferralCode
	e := &entity.User{Phone: "E", ReferralCode: "100005", ReferredBy: d.ReferralCode}

	credits := PropagateCommission(e, 1000, directory(root, a, b, c, d, e), noon)
	require.Len(t, credits, 3)
	assert.Zero(t, a.Balance)
	assert.Zero(t, root.Balance)
	assert.InDelta(t, 20, b.Balance, 1e-9)
}

func TestPropagateCommissionStopsAtUnresolvedAncestor(t *testing.T) {
	_, b, c, d := chain()
	credits := PropagateCommission(d, 2000, directory(b, c, d), noon)
	require.Len(t, credits, 2)
	assert.InDelta(t, 200, c.Balance, 1e-9)
	assert.InDelta(t, 100, b.Balance, 1e-9)

	orphan := &entity.User{Phone: "O"}
	assert.Empty(t, PropagateCommission(orphan, 1000, directory(b, c, d), noon))
}

func TestPropagateCommissionBreaksCycles(t *testing.T) {
	x := &entity.User{Phone: "X", ReferralCode: "1", ReferredBy: "2"}
	y := &entity.User{Phone: "Y", ReferralCode: "2", ReferredBy: "1"}
	credits := PropagateCommission(x, 1000, directory(x, y), noon)
	require.Len(t, credits, 1)
	assert.InDelta(t, 100, y.Balance, 1e-9)
	assert.Zero(t, x.Balance)
}

func TestCreditReferralBonus(t *testing.T) {
	r := &entity.User{Phone: "R", Balance: 5, TeamSize: 2}
	n := &entity.User{Phone: "N"}
	CreditReferralBonus(r, n, 20, noon)

	assert.Equal(t, 25.0, r.Balance)
	assert.Equal(t, 3, r.TeamSize)
	assert.Zero(t, r.TeamIncome)
	require.Len(t, r.Transactions, 1)
	assert.Equal(t, "Referral bonus for N", r.Transactions[0].Description)
}
