package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
	"github.com/oksasatya/solargrowth/pkg/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrUnknownReferral    = errors.New("unknown referral code")
	ErrForbidden          = errors.New("admin only")
	ErrStorageDisabled    = errors.New("image storage not configured")
)

// EventPublisher ships ledger events to the message broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Rules are the tunable ledger constants.
type Rules struct {
	ReferralBonus float64
	CheckInBonus  float64
	LiveEconomics bool
	Location      *time.Location
	InviteBaseURL string
	Withdrawal    ledger.WithdrawalPolicy
}

// DefaultRules matches the platform's published terms.
func DefaultRules() Rules {
	policy := ledger.DefaultWithdrawalPolicy()
	policy.VerifyPin = helpers.CompareHashAndPassword
	return Rules{
		ReferralBonus: 20,
		CheckInBonus:  10,
		Location:      time.UTC,
		InviteBaseURL: "/register",
		Withdrawal:    policy,
	}
}

// Service runs every ledger operation. All state transitions are serialized
// on mu so that request handlers and the accrual scheduler never interleave
// inside a load-mutate-save cycle.
type Service struct {
	Users    repo.UserRepository
	Products repo.ProductRepository
	Requests repo.RequestRepository
	Sessions repo.SessionStore
	Tx       repo.Transactor
	JWT      *helpers.JWTManager
	Logger   *logrus.Logger
	Events   EventPublisher
	Metrics  *metrics.Ledger

	ES           *elasticsearch.Client
	ESUsersIndex string
	GCS          *storage.Client
	GCSBucket    string

	Rules Rules
	Now   func() time.Time

	mu sync.Mutex
}

func NewService(users repo.UserRepository, products repo.ProductRepository, requests repo.RequestRepository, sessions repo.SessionStore, tx repo.Transactor, jwt *helpers.JWTManager, logger *logrus.Logger, rules Rules) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		Users:    users,
		Products: products,
		Requests: requests,
		Sessions: sessions,
		Tx:       tx,
		JWT:      jwt,
		Logger:   logger,
		Rules:    rules,
		Now:      time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// economics builds the resolver for order price and income. The catalog is
// only loaded when orders follow live product edits.
func (s *Service) economics(ctx context.Context) (ledger.Economics, error) {
	if !s.Rules.LiveEconomics {
		return ledger.Economics{}, nil
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return ledger.Economics{}, fmt.Errorf("load catalog: %w", err)
	}
	return ledger.Economics{Catalog: ledger.NewCatalog(products), Live: true}, nil
}

func (s *Service) loadUser(ctx context.Context, phone string) (*entity.User, error) {
	u, err := s.Users.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %s: %w", phone, err)
	}
	return u, nil
}

func (s *Service) saveUser(ctx context.Context, u *entity.User) error {
	if err := s.Users.Upsert(ctx, u); err != nil {
		return fmt.Errorf("save user %s: %w", u.Phone, err)
	}
	s.indexUser(ctx, u)
	return nil
}

// commitRequest persists u and, through save, one of its request records in
// a single unit of work. A record that another writer already resolved
// surfaces as ledger.ErrAlreadyResolved.
func (s *Service) commitRequest(ctx context.Context, u *entity.User, save func(ctx context.Context, requests repo.RequestRepository) error) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, users repo.UserRepository, requests repo.RequestRepository) error {
		if err := users.Upsert(ctx, u); err != nil {
			return fmt.Errorf("save user %s: %w", u.Phone, err)
		}
		return save(ctx, requests)
	})
	if errors.Is(err, repo.ErrConflict) {
		return ledger.ErrAlreadyResolved
	}
	if err != nil {
		return err
	}
	s.indexUser(ctx, u)
	return nil
}

func (s *Service) saveUsers(ctx context.Context, users ...*entity.User) error {
	if len(users) == 1 {
		return s.saveUser(ctx, users[0])
	}
	if err := s.Users.UpsertMany(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	for _, u := range users {
		s.indexUser(ctx, u)
	}
	return nil
}

// directory resolves referral codes against the store, handing back the
// same pointer for repeated lookups so credits accumulate on one copy.
func (s *Service) directory(ctx context.Context) ledger.Directory {
	loaded := map[string]*entity.User{}
	return func(code string) (*entity.User, bool) {
		if u, ok := loaded[code]; ok {
			return u, true
		}
		u, err := s.Users.GetByReferralCode(ctx, code)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				s.Logger.WithError(err).WithField("referral_code", code).Warn("referral lookup failed")
			}
			return nil, false
		}
		loaded[code] = u
		return u, true
	}
}

func (s *Service) publish(ctx context.Context, ev entity.LedgerEvent) {
	if s.Metrics != nil {
		s.Metrics.Events.WithLabelValues(string(ev.Type)).Inc()
	}
	if s.Events == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("event", ev.Type).Warn("publish ledger event failed")
	}
}
