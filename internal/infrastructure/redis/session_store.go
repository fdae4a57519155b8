package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/solargrowth/internal/domain/repository"
)

const sessionPrefix = "user:session:"

func sessionKey(phone string) string { return sessionPrefix + phone }

// SessionStore keeps one session hash per user, expiring with the refresh token.
type SessionStore struct {
	rdb *goredis.Client
}

func NewSessionStore(rdb *goredis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, sess repository.Session, ttl time.Duration) error {
	key := sessionKey(sess.Phone)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"phone":      sess.Phone,
		"sid":        sess.SID,
		"is_admin":   strconv.FormatBool(sess.IsAdmin),
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, phone string) (*repository.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(phone)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, repository.ErrNotFound
	}
	isAdmin, _ := strconv.ParseBool(data["is_admin"])
	created, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &repository.Session{
		Phone:     data["phone"],
		SID:       data["sid"],
		IsAdmin:   isAdmin,
		CreatedAt: created,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, phone string) error {
	return s.rdb.Del(ctx, sessionKey(phone)).Err()
}

func (s *SessionStore) ActivePhones(ctx context.Context) ([]string, error) {
	out := []string{}
	iter := s.rdb.Scan(ctx, 0, sessionPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), sessionPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.SessionStore = (*SessionStore)(nil)
