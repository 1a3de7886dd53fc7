package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionContextPrefix = "responder:ctx:"

// maxTurns bounds how much conversation history is replayed into the
// prompt per session.
const maxTurns = 10

// Turn is one user/assistant exchange kept as session context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// RedisContextStore keeps short-lived conversation context per session
// key so the responder can follow multi-turn exchanges.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionKey string) ([]Turn, error) {
	data, err := s.client.Get(ctx, sessionContextPrefix+sessionKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// Append records a turn and trims the history to the last maxTurns.
func (s *RedisContextStore) Append(ctx context.Context, sessionKey string, turn Turn) error {
	turns, err := s.Get(ctx, sessionKey)
	if err != nil {
		return err
	}
	turns = append(turns, turn)
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionContextPrefix+sessionKey, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionKey string) error {
	return s.client.Del(ctx, sessionContextPrefix+sessionKey).Err()
}
