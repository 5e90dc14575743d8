package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/veraengine/vira/internal/model"
)

// Key layout under the configured prefix.
const (
	keyMetadata = "metadata:" // metadata:<token_id> -> metadata JSON
	keyRegistry = "registry:" // registry:<c_of_o_id> -> registry record JSON
	keyAlerts   = "alerts"    // alerts -> JSON array of all alerts
	keyDeed     = "deed:"     // deed:<token_id> -> raw deed text
)

// PrimaryStore reads asset documents from Redis. Every lookup is bounded by
// the configured timeout so a dead backend fails over promptly.
type PrimaryStore struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewPrimaryStore creates a primary store from configuration. The underlying
// client is safe for concurrent use across in-flight requests.
func NewPrimaryStore(cfg model.PrimaryConfig, log *zap.Logger) *PrimaryStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		MaxRetries:   0, // retry strategy lives in the adapter, not here
	})

	return &PrimaryStore{
		client: client,
		prefix: cfg.KeyPrefix,
		log:    log,
	}
}

// Metadata implements Store.
func (s *PrimaryStore) Metadata(ctx context.Context, tokenID string) (*model.Metadata, error) {
	data, err := s.get(ctx, keyMetadata+tokenID)
	if err != nil {
		return nil, err
	}

	var md model.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode metadata for %q: %w", tokenID, err)
	}
	if md.TokenID == "" {
		md.TokenID = tokenID
	}
	return &md, nil
}

// Registry implements Store.
func (s *PrimaryStore) Registry(ctx context.Context, key string) (*model.RegistryRecord, error) {
	data, err := s.get(ctx, keyRegistry+key)
	if err != nil {
		return nil, err
	}

	var rec model.RegistryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode registry record for %q: %w", key, err)
	}
	return &rec, nil
}

// Alerts implements Store. An absent alert table is an empty table, not an
// error.
func (s *PrimaryStore) Alerts(ctx context.Context) ([]model.Alert, error) {
	data, err := s.get(ctx, keyAlerts)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var alerts []model.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, fmt.Errorf("decode alert table: %w", err)
	}
	return alerts, nil
}

// Deed implements Store.
func (s *PrimaryStore) Deed(ctx context.Context, tokenID string) (string, error) {
	data, err := s.get(ctx, keyDeed+tokenID)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close releases the underlying connection pool.
func (s *PrimaryStore) Close() error {
	return s.client.Close()
}

// get maps redis results onto the store error taxonomy: redis.Nil means the
// record is absent; any other failure means the backend is unavailable.
func (s *PrimaryStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Debug("primary store lookup failed",
			zap.String("key", s.prefix+key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}
