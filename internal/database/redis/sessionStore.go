package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mateolafalce/padelpro/internal/entity"
)

// SessionStore keeps agent sessions as JSON values with a TTL.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix + ":session:",
		ttl:    ttl,
	}
}

// Load returns an empty session when none is stored.
func (s *SessionStore) Load(ctx context.Context, identity string) (*entity.AgentSession, error) {
	data, err := s.client.Get(ctx, s.prefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		return &entity.AgentSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session entity.AgentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, identity string, session *entity.AgentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+identity, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, identity string) error {
	return s.client.Del(ctx, s.prefix+identity).Err()
}
