package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "casa:session:"
	historyKeyPrefix = "casa:history:"
)

// RedisStore persists sessions and history so they survive restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Sessions() SessionStore { return redisSessions{r} }

func (r *RedisStore) History() HistoryStore { return redisHistory{r} }

type redisSessions struct{ r *RedisStore }

func (s redisSessions) Get(ctx context.Context, senderID string) (Session, error) {
	data, err := s.r.client.Get(ctx, sessionKeyPrefix+senderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSession(), nil
	}
	if err != nil {
		return NewSession(), fmt.Errorf("failed to load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return NewSession(), fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

func (s redisSessions) Save(ctx context.Context, senderID string, sess Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.r.client.Set(ctx, sessionKeyPrefix+senderID, b, s.r.ttl).Err()
}

func (s redisSessions) Delete(ctx context.Context, senderID string) error {
	return s.r.client.Del(ctx, sessionKeyPrefix+senderID).Err()
}

type redisHistory struct{ r *RedisStore }

func (h redisHistory) Get(ctx context.Context, senderID string) ([]Turn, error) {
	items, err := h.r.client.LRange(ctx, historyKeyPrefix+senderID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	turns := make([]Turn, 0, len(items))
	for _, item := range items {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (h redisHistory) Append(ctx context.Context, senderID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode turn: %w", err)
		}
		values = append(values, b)
	}

	key := historyKeyPrefix + senderID
	_, err := h.r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -maxHistoryEntries, -1)
		if h.r.ttl > 0 {
			pipe.Expire(ctx, key, h.r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (h redisHistory) Clear(ctx context.Context, senderID string) error {
	return h.r.client.Del(ctx, historyKeyPrefix+senderID).Err()
}
