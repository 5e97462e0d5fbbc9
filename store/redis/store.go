// Package redis provides a Redis-backed Store implementation. It keeps the
// configuration document under a single key, which lets several machines
// share one endpoint list.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kashstash/stash/endpoint"
)

// compile-time interface check.
var _ endpoint.Store = (*Store)(nil)

// DefaultKey is the Redis key holding the configuration document.
const DefaultKey = "stash:config"

// Store implements endpoint.Store on top of a Redis client. The whole
// document lives under one key and is replaced with a single SET, which
// gives the atomic-replace guarantee for free.
type Store struct {
	rdb    goredis.UniversalClient
	key    string
	logger *slog.Logger
}

// New creates a Redis store using rdb. An empty key selects DefaultKey.
func New(rdb goredis.UniversalClient, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{rdb: rdb, key: key, logger: logger}
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Load reads and decodes the document. A missing key yields the empty
// default; so does a value that fails to decode. Connectivity errors are
// returned to the caller, who degrades to the empty default anyway but may
// want to surface the problem.
func (s *Store) Load(ctx context.Context) (*endpoint.Document, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &endpoint.Document{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	doc, err := endpoint.DecodeDocument(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "stored document corrupt, starting empty",
			"key", s.key, "error", err)
		return &endpoint.Document{}, nil
	}
	return doc, nil
}

// Save replaces the stored document with a single SET.
func (s *Store) Save(ctx context.Context, doc *endpoint.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
