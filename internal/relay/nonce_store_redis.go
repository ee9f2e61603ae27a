package relay

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// advanceScript compares-and-bumps a nonce atomically. A missing key counts
// as nonce 0, matching the memory store.
var advanceScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local expected = tonumber(ARGV[1])
if current ~= expected then
	return 0
end
redis.call('SET', KEYS[1], expected + 1)
return 1
`)

// RedisNonceStore keeps relay nonces in Redis so multiple ledger replicas
// share one replay-protection space.
type RedisNonceStore struct {
	client *redis.Client
	prefix string
}

func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client, prefix: "ecert:relay:nonce:"}
}

func (s *RedisNonceStore) Current(ctx context.Context, identity domain.Identity) (uint64, error) {
	val, err := s.client.Get(ctx, s.key(identity)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get nonce: %w", err)
	}
	return val, nil
}

func (s *RedisNonceStore) Advance(ctx context.Context, identity domain.Identity, expected uint64) error {
	ok, err := advanceScript.Run(ctx, s.client, []string{s.key(identity)}, expected).Int()
	if err != nil {
		return fmt.Errorf("advance nonce: %w", err)
	}
	if ok != 1 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisNonceStore) key(identity domain.Identity) string {
	return s.prefix + identity.String()
}
