package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"careermatrix/internal/models"
)

const redisKeyPrefix = "careermatrix:session:"

// RedisStore is an alternative durable backend, selected when
// SESSION_REDIS_ADDR is configured. Entries carry a TTL equal to the
// session lifetime, so Redis expires them without an explicit sweep.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Put(ctx context.Context, sess models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// Already expired; storing it would only create a row Get must
		// filter out again.
		return nil
	}
	return r.client.Set(ctx, redisKeyPrefix+sess.ID, payload, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, err
	}
	if sess.Expired(time.Now().UTC()) {
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (r *RedisStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	// TTL-based expiry; nothing to sweep.
	return 0, nil
}
