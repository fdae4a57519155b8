package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

var account = entity.BankAccount{BankName: "bKash", AccountNumber: "01711111111", HolderName: "Rahim"}

func TestRechargeLifecycle(t *testing.T) {
	u := &entity.User{Phone: "U"}
	rec, err := SubmitRecharge(u, 1000, "TRX12345", noon)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, rec.Status)
	assert.Zero(t, u.Balance)
	require.Len(t, u.RechargeHistory, 1)
	require.Len(t, u.Transactions, 1)
	assert.Equal(t, entity.StatusPending, u.Transactions[0].Status)

	require.NoError(t, ResolveRecharge(u, rec, entity.StatusSuccess, noon))
	assert.Equal(t, 1000.0, u.Balance)
	assert.Equal(t, entity.StatusSuccess, u.RechargeHistory[0].Status)
	assert.Equal(t, entity.StatusSuccess, u.Transactions[0].Status)
	require.Len(t, u.Notifications, 1)
	assert.Equal(t, entity.NotifyRecharge, u.Notifications[0].Type)

	err = ResolveRecharge(u, rec, entity.StatusSuccess, noon)
	require.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, 1000.0, u.Balance)
}

func TestRechargeFailedKeepsBalance(t *testing.T) {
	u := &entity.User{Phone: "U", Balance: 7}
	rec, err := SubmitRecharge(u, 500, "TRX99999", noon)
	require.NoError(t, err)
	require.NoError(t, ResolveRecharge(u, rec, entity.StatusFailed, noon))
	assert.Equal(t, 7.0, u.Balance)
	assert.Equal(t, entity.StatusFailed, u.Transactions[0].Status)
	assert.Len(t, u.Notifications, 1)
}

func TestResolveRejectsBadInput(t *testing.T) {
	u := &entity.User{Phone: "U"}
	rec, _ := SubmitRecharge(u, 500, "TRX99999", noon)
	require.ErrorIs(t, ResolveRecharge(u, rec, entity.StatusPending, noon), ErrInvalidDecision)

	other := &entity.User{Phone: "V"}
	require.ErrorIs(t, ResolveRecharge(other, rec, entity.StatusSuccess, noon), ErrRecordOwnerMismatch)
	assert.Equal(t, entity.StatusPending, rec.Status)
}

func TestWithdrawalReservationAndRefund(t *testing.T) {
	policy := DefaultWithdrawalPolicy()
	u := &entity.User{Phone: "U", Balance: 1000}

	rec, err := SubmitWithdrawal(u, 400, account, "", policy, noon)
	require.NoError(t, err)
	assert.Equal(t, 600.0, u.Balance)
	assert.Equal(t, entity.StatusPending, rec.Status)
	assert.Equal(t, "bKash", rec.BankName)
	require.Len(t, u.WithdrawalHistory, 1)

	require.NoError(t, ResolveWithdrawal(u, rec, entity.StatusFailed, noon))
	assert.Equal(t, 1000.0, u.Balance)
	assert.Equal(t, entity.StatusFailed, u.WithdrawalHistory[0].Status)
	assert.Contains(t, u.Transactions[0].Description, "refunded")

	require.ErrorIs(t, ResolveWithdrawal(u, rec, entity.StatusFailed, noon), ErrAlreadyResolved)
	assert.Equal(t, 1000.0, u.Balance)
}

func TestWithdrawalSuccessKeepsDebit(t *testing.T) {
	u := &entity.User{Phone: "U", Balance: 1000}
	rec, err := SubmitWithdrawal(u, 300, account, "", DefaultWithdrawalPolicy(), noon)
	require.NoError(t, err)
	require.NoError(t, ResolveWithdrawal(u, rec, entity.StatusSuccess, noon))
	assert.Equal(t, 700.0, u.Balance)
	assert.Equal(t, entity.NotifyWithdrawal, u.Notifications[0].Type)
}

func TestWithdrawalPreconditionsInOrder(t *testing.T) {
	policy := DefaultWithdrawalPolicy()
	night := time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		balance float64
		amount  float64
		pin     string
		at      time.Time
		want    error
	}{
		{"window checked first", 0, 10, "0000", night, ErrOutsideWindow},
		{"minimum before balance", 0, 299, "1234", noon, ErrBelowMinimum},
		{"balance before pin", 100, 300, "0000", noon, ErrInsufficientBalance},
		{"wrong pin", 1000, 300, "0000", noon, ErrWrongPin},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := &entity.User{Phone: "U", Balance: c.balance, TransactionPin: "1234"}
			_, err := SubmitWithdrawal(u, c.amount, account, c.pin, policy, c.at)
			require.ErrorIs(t, err, c.want)
			assert.Equal(t, c.balance, u.Balance)
			assert.Empty(t, u.WithdrawalHistory)
			assert.Empty(t, u.Transactions)
		})
	}
}

func TestWithdrawalWindowUsesOperatorZone(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*3600)
	policy := DefaultWithdrawalPolicy()
	policy.Location = dhaka

	// 05:00 UTC is 11:00 in Dhaka.
	assert.True(t, policy.InWindow(time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)))
	// 14:00 UTC is 20:00 in Dhaka, the closing hour.
	assert.False(t, policy.InWindow(time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)))
}

func TestWithdrawalCustomPinVerifier(t *testing.T) {
	policy := DefaultWithdrawalPolicy()
	policy.VerifyPin = func(stored, submitted string) bool { return stored == "hash:"+submitted }
	u := &entity.User{Phone: "U", Balance: 500, TransactionPin: "hash:4321"}

	_, err := SubmitWithdrawal(u, 300, account, "4321", policy, noon)
	require.NoError(t, err)
	assert.Equal(t, 200.0, u.Balance)
}

func TestResolveTrustsUsersOwnCopy(t *testing.T) {
	policy := DefaultWithdrawalPolicy()
	u := &entity.User{Phone: "U", Balance: 1000}
	w, err := SubmitWithdrawal(u, 400, account, "", policy, noon)
	require.NoError(t, err)
	stale := *w

	require.NoError(t, ResolveWithdrawal(u, w, entity.StatusFailed, noon))
	require.Equal(t, 1000.0, u.Balance)

	// the global record was never updated, the user's history was
	require.ErrorIs(t, ResolveWithdrawal(u, &stale, entity.StatusFailed, noon), ErrAlreadyResolved)
	assert.Equal(t, 1000.0, u.Balance)
	assert.Equal(t, entity.StatusPending, stale.Status)

	rec, err := SubmitRecharge(u, 500, "TRX55555", noon)
	require.NoError(t, err)
	staleRec := *rec
	require.NoError(t, ResolveRecharge(u, rec, entity.StatusSuccess, noon))
	require.ErrorIs(t, ResolveRecharge(u, &staleRec, entity.StatusSuccess, noon), ErrAlreadyResolved)
	assert.Equal(t, 1500.0, u.Balance)
}
