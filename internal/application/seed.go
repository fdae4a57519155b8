package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	repo "github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

const unsplash = "https://images.unsplash.com/"

// DefaultCatalog is the launch line-up: five solar panels and two wind
// turbines, each paying out over 100 days.
func DefaultCatalog() []entity.Product {
	img := func(id string) string { return unsplash + id + "?auto=format&fit=crop&q=80&w=400" }
	return []entity.Product{
		{Name: "Solar Panel 1", Price: 1000, DailyIncome: 100, TotalIncome: 10000, Validity: 100, Category: entity.CategorySolar, Image: img("photo-1509391366360-fe5bb58485bb")},
		{Name: "Solar Panel 2", Price: 2000, DailyIncome: 210, TotalIncome: 21000, Validity: 100, Category: entity.CategorySolar, Image: img("photo-1508514177221-188b1cf16e9d")},
		{Name: "Solar Panel 3", Price: 5000, DailyIncome: 550, TotalIncome: 55000, Validity: 100, Category: entity.CategorySolar, Image: img("photo-1497435334941-8c899ee9e8e9")},
		{Name: "Solar Panel 4", Price: 10000, DailyIncome: 1200, TotalIncome: 120000, Validity: 100, Category: entity.CategorySolar, Image: img("photo-1548337138-e87d889cc98b")},
		{Name: "Solar Panel 5", Price: 20000, DailyIncome: 2600, TotalIncome: 260000, Validity: 100, Category: entity.CategorySolar, Image: img("photo-1559302504-64aae6ca6b6d")},
		{Name: "Wind Turbine 1", Price: 1500, DailyIncome: 160, TotalIncome: 16000, Validity: 100, Category: entity.CategoryWind, Image: img("photo-1466611653911-95282fc3656b")},
		{Name: "Wind Turbine 2", Price: 3000, DailyIncome: 380, TotalIncome: 38000, Validity: 100, Category: entity.CategoryWind, Image: img("photo-1532601224476-15c79f2f7a51")},
	}
}

// SeedResult reports what Seed changed.
type SeedResult struct {
	ProductsCreated int
	AdminCreated    bool
	AdminPromoted   bool
}

// Seed fills an empty catalog with DefaultCatalog and makes sure the admin
// account exists. Running it again changes nothing.
func (s *Service) Seed(ctx context.Context, adminPhone, adminPassword string) (SeedResult, error) {
	var res SeedResult

	existing, err := s.Products.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list products: %w", err)
	}
	if len(existing) == 0 {
		for _, p := range DefaultCatalog() {
			p := p
			if err := s.Products.Create(ctx, &p); err != nil {
				return res, fmt.Errorf("seed product %q: %w", p.Name, err)
			}
			res.ProductsCreated++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phone := normalizePhone(adminPhone)
	u, err := s.Users.Get(ctx, phone)
	switch {
	case err == nil:
		if !u.IsAdmin {
			u.IsAdmin = true
			if err := s.saveUser(ctx, u); err != nil {
				return res, err
			}
			res.AdminPromoted = true
		}
	case errors.Is(err, repo.ErrNotFound):
		hash, err := helpers.HashPassword(adminPassword)
		if err != nil {
			return res, err
		}
		code, err := s.uniqueReferralCode(ctx)
		if err != nil {
			return res, err
		}
		admin := &entity.User{
			Phone:        phone,
			Password:     hash,
			IsAdmin:      true,
			VIPLevel:     1,
			ReferralCode: code,
			CreatedAt:    s.now(),
		}
		if err := s.saveUser(ctx, admin); err != nil {
			return res, err
		}
		res.AdminCreated = true
	default:
		return res, fmt.Errorf("load admin: %w", err)
	}

	s.Logger.WithField("products", res.ProductsCreated).WithField("admin_created", res.AdminCreated).Info("seed complete")
	return res, nil
}
