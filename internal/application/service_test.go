package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	"github.com/oksasatya/solargrowth/internal/infrastructure/memory"
	"github.com/oksasatya/solargrowth/pkg/helpers"
	"github.com/oksasatya/solargrowth/pkg/metrics"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingPublisher struct{ events []entity.LedgerEvent }

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.events = append(p.events, body.(entity.LedgerEvent))
	return nil
}

func (p *recordingPublisher) types() []entity.EventType {
	out := make([]entity.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc    *Service
	clock  *clock
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	users, requests := memory.NewUserRepository(), memory.NewRequestRepository()
	svc := NewService(
		users,
		memory.NewProductRepository(),
		requests,
		memory.NewSessionStore(),
		memory.NewTransactor(users, requests),
		jwt,
		logger,
		DefaultRules(),
	)
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc.Now = c.now
	pub := &recordingPublisher{}
	svc.Events = pub
	svc.Metrics = metrics.New()
	return &fixture{svc: svc, clock: c, events: pub}
}

func (f *fixture) register(t *testing.T, phone, ref string) *entity.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{Phone: phone, Password: "secret1", ReferralCode: ref})
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, price, daily float64) *entity.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), ProductInput{
		Name: "Solar Panel", Price: price, DailyIncome: daily, TotalIncome: daily * 100, Validity: 100, Category: entity.CategorySolar,
	})
	require.NoError(t, err)
	return p
}

// fund walks a recharge through submission and admin approval.
func (f *fixture) fund(t *testing.T, phone string, amount float64) {
	t.Helper()
	ctx := context.Background()
	rec, err := f.svc.SubmitRecharge(ctx, phone, RechargeInput{Amount: amount, TrxID: "TRX123456"})
	require.NoError(t, err)
	_, err = f.svc.ResolveRecharge(ctx, rec.ID, DecisionInput{Status: entity.StatusSuccess})
	require.NoError(t, err)
}

func (f *fixture) user(t *testing.T, phone string) *entity.User {
	t.Helper()
	u, err := f.svc.Users.Get(context.Background(), phone)
	require.NoError(t, err)
	return u
}

func TestRegisterCreditsReferrer(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "01700000001", "")
	assert.Equal(t, 1, a.VIPLevel)
	assert.Len(t, a.ReferralCode, 6)

	b := f.register(t, "+880 1700-000002", a.ReferralCode)
	assert.Equal(t, "8801700000002", b.Phone)
	assert.Equal(t, a.ReferralCode, b.ReferredBy)

	a = f.user(t, "01700000001")
	assert.Equal(t, 20.0, a.Balance)
	assert.Equal(t, 1, a.TeamSize)
	require.Len(t, a.Transactions, 1)
	assert.Equal(t, entity.TxBonus, a.Transactions[0].Type)
}

func TestRegisterRejectsDuplicatesAndUnknownCodes(t *testing.T) {
	f := newFixture(t)
	f.register(t, "01700000001", "")

	_, err := f.svc.Register(context.Background(), RegisterInput{Phone: "01700000001", Password: "secret1"})
	require.ErrorIs(t, err, ErrPhoneTaken)

	_, err = f.svc.Register(context.Background(), RegisterInput{Phone: "01700000009", Password: "secret1", ReferralCode: "000000"})
	require.ErrorIs(t, err, ErrUnknownReferral)

	_, err = f.svc.Register(context.Background(), RegisterInput{Phone: "123", Password: "secret1"})
	assert.True(t, IsValidation(err))
}

func TestLoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")

	_, _, err := f.svc.Login(ctx, LoginInput{Phone: "01700000001", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	u, pair, err := f.svc.Login(ctx, LoginInput{Phone: "01700000001", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "01700000001", u.Phone)

	sess, err := f.svc.Authorize(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "01700000001", sess.Phone)

	rotated, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// The old pair belongs to a replaced session.
	_, err = f.svc.Authorize(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Authorize(ctx, rotated.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, "01700000001"))
	_, err = f.svc.Authorize(ctx, rotated.AccessToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEndToEndReferralPurchaseAccrualCollect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.register(t, "01700000001", "")
	b := f.register(t, "01700000002", a.ReferralCode)
	c := f.register(t, "01700000003", b.ReferralCode)
	d := f.register(t, "01700000004", c.ReferralCode)
	p := f.product(t, 5000, 550)

	f.fund(t, d.Phone, 5000)
	order, err := f.svc.Buy(ctx, d.Phone, BuyInput{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 550.0, order.DailyIncome)

	d = f.user(t, d.Phone)
	assert.Zero(t, d.Balance)
	assert.Equal(t, 2, d.VIPLevel)

	// Three levels: 10%, 5%, 2%, on top of each referral bonus.
	assert.InDelta(t, 20.0+500, f.user(t, c.Phone).Balance, 1e-9)
	assert.InDelta(t, 20.0+250, f.user(t, b.Phone).Balance, 1e-9)
	assert.InDelta(t, 20.0+100, f.user(t, a.Phone).Balance, 1e-9)
	assert.InDelta(t, 500.0, f.user(t, c.Phone).TeamIncome, 1e-9)

	_, _, err = f.svc.Login(ctx, LoginInput{Phone: d.Phone, Password: "secret1"})
	require.NoError(t, err)

	sched := NewAccrualScheduler(f.svc, time.Hour)
	for i := 0; i < 24; i++ {
		n, err := sched.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.InDelta(t, 550.0, f.user(t, d.Phone).UncollectedIncome, 1e-6)

	amount, err := f.svc.CollectIncome(ctx, d.Phone)
	require.NoError(t, err)
	assert.Equal(t, 550.0, amount)

	d = f.user(t, d.Phone)
	assert.Equal(t, 550.0, d.Balance)
	assert.Equal(t, 550.0, d.TotalIncome)
	assert.Zero(t, d.UncollectedIncome)

	_, err = f.svc.CollectIncome(ctx, d.Phone)
	require.ErrorIs(t, err, ledger.ErrNothingToCollect)

	assert.Contains(t, f.events.types(), entity.EventOrderPurchased)
	assert.Contains(t, f.events.types(), entity.EventIncomeCollected)
}

func TestBuyRequiresBalanceAndProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")
	p := f.product(t, 1000, 100)

	_, err := f.svc.Buy(ctx, "01700000001", BuyInput{ProductID: p.ID})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	_, err = f.svc.Buy(ctx, "01700000001", BuyInput{ProductID: 999})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestSchedulerSkipsLoggedOutAndOrderlessUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")
	f.register(t, "01700000002", "")
	p := f.product(t, 1000, 86.4)

	f.fund(t, "01700000001", 1000)
	_, err := f.svc.Buy(ctx, "01700000001", BuyInput{ProductID: p.ID})
	require.NoError(t, err)

	sched := NewAccrualScheduler(f.svc, time.Second)

	// Owner of the order is not logged in yet.
	n, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _, err = f.svc.Login(ctx, LoginInput{Phone: "01700000002", Password: "secret1"})
	require.NoError(t, err)
	n, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _, err = f.svc.Login(ctx, LoginInput{Phone: "01700000001", Password: "secret1"})
	require.NoError(t, err)
	n, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.001, f.user(t, "01700000001").UncollectedIncome, 1e-12)

	require.NoError(t, f.svc.Logout(ctx, "01700000001"))
	n, err = sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithdrawalFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")
	f.fund(t, "01700000001", 1000)

	_, err := f.svc.UpdateProfile(ctx, "01700000001", UpdateProfileInput{TransactionPin: "1234"})
	require.NoError(t, err)

	in := WithdrawalInput{Amount: 400, BankName: "bKash", AccountNumber: "01700000001", HolderName: "Rahim", Pin: "9999"}
	_, err = f.svc.SubmitWithdrawal(ctx, "01700000001", in)
	require.ErrorIs(t, err, ledger.ErrWrongPin)

	in.Pin = "1234"
	rec, err := f.svc.SubmitWithdrawal(ctx, "01700000001", in)
	require.NoError(t, err)
	assert.Equal(t, 600.0, f.user(t, "01700000001").Balance)

	pending, err := f.svc.ListWithdrawals(ctx, entity.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = f.svc.ResolveWithdrawal(ctx, rec.ID, DecisionInput{Status: entity.StatusFailed})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, f.user(t, "01700000001").Balance)

	_, err = f.svc.ResolveWithdrawal(ctx, rec.ID, DecisionInput{Status: entity.StatusSuccess})
	require.ErrorIs(t, err, ledger.ErrAlreadyResolved)
	assert.Equal(t, 1000.0, f.user(t, "01700000001").Balance)

	_, err = f.svc.ResolveWithdrawal(ctx, "missing", DecisionInput{Status: entity.StatusSuccess})
	require.ErrorIs(t, err, ErrRequestNotFound)

	f.clock.advance(9 * time.Hour)
	_, err = f.svc.SubmitWithdrawal(ctx, "01700000001", in)
	require.ErrorIs(t, err, ledger.ErrOutsideWindow)
}

func TestRechargeValidationAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")
	f.product(t, 1000, 100)

	_, err := f.svc.SubmitRecharge(ctx, "01700000001", RechargeInput{Amount: 500, TrxID: "abc"})
	assert.True(t, IsValidation(err))

	f.fund(t, "01700000001", 700)
	_, err = f.svc.SubmitRecharge(ctx, "01700000001", RechargeInput{Amount: 300, TrxID: "TRX654321"})
	require.NoError(t, err)

	st, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalUsers)
	assert.Equal(t, 1, st.ActiveProducts)
	assert.Equal(t, 700.0, st.TotalDeposits)
	assert.Equal(t, 1, st.PendingRecharges)
	assert.Equal(t, 300.0, st.PendingRechargeAmount)

	_, err = f.svc.ListRecharges(ctx, "Bogus")
	require.ErrorIs(t, err, ledger.ErrInvalidDecision)
}

func TestDailyCheckInOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")

	bonus, err := f.svc.DailyCheckIn(ctx, "01700000001")
	require.NoError(t, err)
	assert.Equal(t, 10.0, bonus)

	_, err = f.svc.DailyCheckIn(ctx, "01700000001")
	require.ErrorIs(t, err, ledger.ErrAlreadyCheckedIn)

	f.clock.advance(24 * time.Hour)
	_, err = f.svc.DailyCheckIn(ctx, "01700000001")
	require.NoError(t, err)
	assert.Equal(t, 20.0, f.user(t, "01700000001").Balance)
}

func TestNotificationsMarkedReadAfterView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")
	f.fund(t, "01700000001", 500)

	list, unread, err := f.svc.Notifications(ctx, "01700000001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.Equal(t, 1, unread)

	list, unread, err = f.svc.Notifications(ctx, "01700000001")
	require.NoError(t, err)
	assert.True(t, list[0].Read)
	assert.Zero(t, unread)
}

func TestProductAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, ProductInput{Name: "Bad", Price: 100, Category: "Coal"})
	assert.True(t, IsValidation(err))

	p := f.product(t, 1000, 100)
	updated, err := f.svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Solar 1+", Price: 1200, DailyIncome: 130, Category: entity.CategorySolar})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.Price)

	_, err = f.svc.UploadProductImage(ctx, p.ID, nil, "a.png", "image/png")
	require.ErrorIs(t, err, ErrStorageDisabled)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	require.ErrorIs(t, f.svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)
}

func TestAdjustUserReclassifiesAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "01700000001", "")

	balance := 250.0
	admin := true
	u, err := f.svc.AdjustUser(ctx, "01700000001", AdjustUserInput{Balance: &balance, IsAdmin: &admin, Note: "manual"})
	require.NoError(t, err)
	assert.Equal(t, 250.0, u.Balance)
	assert.True(t, u.IsAdmin)
	require.NotEmpty(t, u.Notifications)
	assert.Equal(t, entity.NotifySystem, u.Notifications[0].Type)

	_, err = f.svc.AdjustUser(ctx, "01799999999", AdjustUserInput{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestTeamAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "01700000001", "")
	f.register(t, "01700000002", a.ReferralCode)
	f.register(t, "01800000003", a.ReferralCode)

	team, err := f.svc.Team(ctx, a.Phone)
	require.NoError(t, err)
	assert.Equal(t, 2, team.TeamSize)
	assert.Len(t, team.Members, 2)
	assert.Equal(t, "/register?ref="+a.ReferralCode, team.InviteLink)

	found, err := f.svc.SearchUsers(ctx, "0170", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Seed(ctx, "01700000000", "admin123")
	require.NoError(t, err)
	assert.Equal(t, 7, res.ProductsCreated)
	assert.True(t, res.AdminCreated)

	res, err = f.svc.Seed(ctx, "01700000000", "admin123")
	require.NoError(t, err)
	assert.Zero(t, res.ProductsCreated)
	assert.False(t, res.AdminCreated)

	products, err := f.svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 7)

	_, pair, err := f.svc.Login(ctx, LoginInput{Phone: "01700000000", Password: "admin123"})
	require.NoError(t, err)
	sess, err := f.svc.Authorize(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
}
