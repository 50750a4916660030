// Package session holds the authenticated identity and derived role for each
// storefront session, keyed by bearer token. Read-mostly: navigation guards
// and sync-eligibility checks consume it, the auth flow writes it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Role is the coarse authorization bucket a user belongs to.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdmin         Role = "admin"
	RoleDeliveryAgent Role = "delivery_agent"
)

// Session is the identity consumed read-only by cart/checkout logic.
type Session struct {
	UserID      string `json:"userId"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}

// KV is the small key-value surface the store needs. Backed by Redis in
// production and a map in tests.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisKV adapts a redis client to KV.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(addr string) *RedisKV {
	return &RedisKV{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Store persists sessions keyed by bearer token with a TTL.
type Store struct {
	kv  KV
	ttl time.Duration
	log *logrus.Entry
}

func NewStore(kv KV, ttl time.Duration, log *logrus.Logger) *Store {
	return &Store{
		kv:  kv,
		ttl: ttl,
		log: log.WithField("component", "session"),
	}
}

func sessionKey(token string) string { return "session:" + token }

// Login stores sess under token. Overwrites any prior session for the token.
func (s *Store) Login(ctx context.Context, token string, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKey(token), string(payload), s.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Lookup resolves token to a session. Returns (nil, nil) for unknown tokens.
// A record that fails to parse is dropped and treated as unauthenticated.
func (s *Store) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.WithError(err).Warn("corrupt session record, dropping")
		_ = s.kv.Del(ctx, sessionKey(token))
		return nil, nil
	}
	return &sess, nil
}

// IsAuthenticated reports whether token resolves to a live session.
func (s *Store) IsAuthenticated(ctx context.Context, token string) bool {
	sess, err := s.Lookup(ctx, token)
	return err == nil && sess != nil
}

// HasRole reports whether token's session carries role.
func (s *Store) HasRole(ctx context.Context, token string, role Role) bool {
	sess, err := s.Lookup(ctx, token)
	return err == nil && sess != nil && sess.Role == role
}

// Logout removes the session. With the token gone, anything derived from it
// (cart-sync eligibility included) is revoked.
func (s *Store) Logout(ctx context.Context, token string) error {
	if err := s.kv.Del(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
