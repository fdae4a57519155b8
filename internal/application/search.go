package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
)

// UserSummary is the admin-facing projection of a user.
type UserSummary struct {
	Phone        string    `json:"phone"`
	Balance      float64   `json:"balance"`
	TotalIncome  float64   `json:"totalIncome"`
	VIPLevel     int       `json:"vipLevel"`
	ReferralCode string    `json:"referralCode"`
	ReferredBy   string    `json:"referredBy,omitempty"`
	TeamSize     int       `json:"teamSize"`
	Orders       int       `json:"orders"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

func summarize(u *entity.User) UserSummary {
	return UserSummary{
		Phone:        u.Phone,
		Balance:      u.Balance,
		TotalIncome:  u.TotalIncome,
		VIPLevel:     u.VIPLevel,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		TeamSize:     u.TeamSize,
		Orders:       len(u.Orders),
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	b, err := json.Marshal(summarize(u))
	if err != nil {
		return
	}
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.Phone, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("phone", u.Phone).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("phone", u.Phone).Warn("es index response error")
	}
}

// SearchUsers finds users whose phone contains q. Elasticsearch serves the
// query when configured; otherwise, or when it fails, the store is scanned.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]UserSummary, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	q = normalizePhone(q)
	if s.ES != nil && s.ESUsersIndex != "" && q != "" {
		out, err := s.searchES(ctx, q, size)
		if err == nil {
			return out, nil
		}
		s.Logger.WithError(err).Warn("es search failed, scanning store")
	}

	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := []UserSummary{}
	for _, u := range users {
		if strings.Contains(u.Phone, q) {
			out = append(out, summarize(u))
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

func (s *Service) searchES(ctx context.Context, q string, size int) ([]UserSummary, error) {
	query := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"phone": map[string]any{"value": "*" + q + "*"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserSummary `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
