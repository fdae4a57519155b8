package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient builds the client behind admin user search. Basic auth is
// optional; transient 502/503/504 answers are retried twice.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     addrs,
		Username:      username,
		Password:      password,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		MaxRetries:    2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

// UsersIndexMapping keeps phone and referral codes as keywords so wildcard
// search matches substrings of the whole number.
const UsersIndexMapping = `{
  "mappings": {
    "properties": {
      "phone":        {"type": "keyword"},
      "referralCode": {"type": "keyword"},
      "referredBy":   {"type": "keyword"},
      "balance":      {"type": "double"},
      "totalIncome":  {"type": "double"},
      "vipLevel":     {"type": "integer"},
      "teamSize":     {"type": "integer"},
      "orders":       {"type": "integer"},
      "isAdmin":      {"type": "boolean"},
      "createdAt":    {"type": "date"}
    }
  }
}`

// EnsureUsersIndex creates index with UsersIndexMapping unless it exists.
func EnsureUsersIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(UsersIndexMapping)}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
