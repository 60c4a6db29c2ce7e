package state

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/atlaspack/pkg/errors"
)

// DefaultRedisKey is used when the URL carries no key.
const DefaultRedisKey = "atlaspack:state"

// RedisStore keeps the blob under a single Redis key, letting several
// machines append to one atlas in turn.
type RedisStore struct {
	client *redis.Client
	key    string
	addr   string
}

// NewRedisStore connects to the Redis server in rawURL. The key is taken from
// the "key" query parameter, e.g. redis://localhost:6379/0?key=game:atlas.
func NewRedisStore(rawURL string) (*RedisStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse state URL")
	}
	key := u.Query().Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	q := u.Query()
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse redis URL")
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key, addr: client.Options().Addr}
}

// Load reads the blob, retrying transient network failures.
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := retryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.key).Bytes()
		return retryable(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRead, err, "read state %s", s.Location())
	}
	return data, nil
}

// Save writes the blob, retrying transient network failures.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	err := retryWithBackoff(ctx, func() error {
		return retryable(s.client.Set(ctx, s.key, data, 0).Err())
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "write state %s", s.Location())
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "delete state %s", s.Location())
	}
	return nil
}

func (s *RedisStore) Location() string {
	return "redis://" + strings.TrimPrefix(s.addr, "redis://") + "/" + s.key
}

func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
