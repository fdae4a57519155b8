package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Register creates an account and, when a referral code is given, pays the
// inviter the sign-up bonus in the same write.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Users.Get(ctx, in.Phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("check phone: %w", err)
	}

	var referrer *entity.User
	if in.ReferralCode != "" {
		r, err := s.Users.GetByReferralCode(ctx, in.ReferralCode)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUnknownReferral
			}
			return nil, fmt.Errorf("resolve referral: %w", err)
		}
		referrer = r
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &entity.User{
		Phone:        in.Phone,
		Password:     hash,
		VIPLevel:     1,
		ReferralCode: code,
		ReferredBy:   in.ReferralCode,
		CreatedAt:    now,
	}

	if referrer == nil {
		if err := s.saveUser(ctx, u); err != nil {
			return nil, err
		}
	} else {
		ledger.CreditReferralBonus(referrer, u, s.Rules.ReferralBonus, now)
		if err := s.saveUsers(ctx, u, referrer); err != nil {
			return nil, err
		}
	}

	s.Logger.WithField("phone", u.Phone).WithField("referred_by", u.ReferredBy).Info("user registered")
	s.publish(ctx, entity.LedgerEvent{Type: entity.EventUserRegistered, Phone: u.Phone, At: now})
	return u, nil
}

func (s *Service) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := helpers.GenReferralCode()
		if err != nil {
			return "", err
		}
		_, err = s.Users.GetByReferralCode(ctx, code)
		if errors.Is(err, repo.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
	}
	return "", errors.New("could not allocate a referral code")
}

// Login checks credentials, reconciles the VIP tier and opens a session.
// A new login replaces any previous session of the same user.
func (s *Service) Login(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	in.Phone = normalizePhone(in.Phone)
	if err := check(in); err != nil {
		return nil, TokenPair{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.Users.Get(ctx, in.Phone)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return nil, TokenPair{}, fmt.Errorf("load user %s: %w", in.Phone, err)
	case !helpers.CompareHashAndPassword(u.Password, in.Password):
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err := s.reconcile(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.Phone, sid, u.IsAdmin)
	if err != nil {
		s.Logger.WithError(err).WithField("phone", u.Phone).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.Phone, sid, u.IsAdmin)
	if err != nil {
		s.Logger.WithError(err).WithField("phone", u.Phone).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	sess := repo.Session{Phone: u.Phone, SID: sid, IsAdmin: u.IsAdmin, CreatedAt: s.now()}
	if err := s.Sessions.Save(ctx, sess, s.JWT.RefreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("save session: %w", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the token pair. The refresh token must belong to the
// user's current session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.Sessions.Get(ctx, claims.UserID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return TokenPair{}, fmt.Errorf("load session: %w", err)
	case sess.SID != claims.SessionID:
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.Get(ctx, claims.UserID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return TokenPair{}, fmt.Errorf("load user %s: %w", claims.UserID, err)
	}
	return s.issueTokens(ctx, u)
}

// Logout ends the session; accrual stops for the user until the next login.
func (s *Service) Logout(ctx context.Context, phone string) error {
	if err := s.Sessions.Delete(ctx, phone); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authorize resolves an access token to its live session.
func (s *Service) Authorize(ctx context.Context, accessToken string) (*repo.Session, error) {
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.Sessions.Get(ctx, claims.UserID)
	if err != nil || sess.SID != claims.SessionID {
		return nil, ErrInvalidCredentials
	}
	return sess, nil
}
