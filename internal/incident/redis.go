package incident

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

// RedisStore keeps each incident as a JSON blob under incident:<id>, indexed
// by channel and status sets.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func incidentKey(id string) string { return fmt.Sprintf("incident:%s", id) }

func channelKey(channel string) string { return fmt.Sprintf("incidents:channel:%s", channel) }

func statusKey(status models.IncidentStatus) string { return fmt.Sprintf("incidents:status:%s", status) }

func (s *RedisStore) Create(ctx context.Context, incident *models.Incident) (string, error) {
	if incident.ID == "" {
		incident.ID = newID()
	}
	if incident.Status == "" {
		incident.Status = models.IncidentStatusOpen
	}

	if err := s.put(ctx, incident); err != nil {
		return "", err
	}

	if err := s.rdb.SAdd(ctx, channelKey(incident.Channel), incident.ID).Err(); err != nil {
		return "", fmt.Errorf("failed to add to channel set: %w", err)
	}

	if err := s.rdb.SAdd(ctx, statusKey(incident.Status), incident.ID).Err(); err != nil {
		return "", fmt.Errorf("failed to add to status set: %w", err)
	}

	return incident.ID, nil
}

func (s *RedisStore) put(ctx context.Context, incident *models.Incident) error {
	data, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident: %w", err)
	}

	if err := s.rdb.Set(ctx, incidentKey(incident.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store incident: %w", err)
	}
	return nil
}
