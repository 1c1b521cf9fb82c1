// Package redis stores editing drafts in Redis with a sliding TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/port"
)

const (
	draftKeyPrefix  = "draft:"
	defaultDraftTTL = 12 * time.Hour
)

// Store implements port.DraftStore on Redis. Every Save refreshes the TTL, so
// an abandoned session expires after TTL of inactivity.
type Store struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient builds the go-redis client for the configured address.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewStore wraps an existing client.
func NewStore(client goredis.UniversalClient, ttl time.Duration, logger *zap.Logger) port.DraftStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, ttl: ttl, logger: logger.Named("draftstore.redis")}
}

func draftKey(tenantID, draftID uuid.UUID) string {
	return draftKeyPrefix + tenantID.String() + ":" + draftID.String()
}

func (s *Store) Get(ctx context.Context, tenantID, draftID uuid.UUID) (*domain.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(tenantID, draftID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		s.logger.Debug("draft miss", zap.Stringer("draft_id", draftID))
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("draftstore.redis.Get: %w", err)
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("draftstore.redis.Get decode: %w", err)
	}
	return &draft, nil
}

func (s *Store) Save(ctx context.Context, draft *domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("draftstore.redis.Save encode: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(draft.TenantID, draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("draftstore.redis.Save: %w", err)
	}
	s.logger.Debug("draft saved",
		zap.Stringer("draft_id", draft.ID),
		zap.Int("revision", draft.Revision),
		zap.Duration("ttl", s.ttl))
	return nil
}

func (s *Store) Delete(ctx context.Context, tenantID, draftID uuid.UUID) error {
	if err := s.client.Del(ctx, draftKey(tenantID, draftID)).Err(); err != nil {
		return fmt.Errorf("draftstore.redis.Delete: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
