package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an abandoned session survives before the
// next check-in starts fresh.
const DefaultSessionTTL = 24 * time.Hour

// RedisSessionStore keeps active sessions in Redis, JSON-marshalled under a
// per-patient key.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(patientID uuid.UUID) string {
	return fmt.Sprintf("checkin:session:%s", patientID)
}

func (s *RedisSessionStore) Get(ctx context.Context, patientID uuid.UUID) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(patientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.PatientID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, patientID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(patientID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
