package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/utils"
)

// IdentityCache keeps resolved session identities for a short TTL so the
// auth middleware does not round-trip to the identity service on every
// request. Wiring is optional; callers must tolerate a nil cache.
type IdentityCache interface {
	Get(ctx context.Context, sessionToken string) (*identity.Identity, bool)
	Set(ctx context.Context, sessionToken string, ident *identity.Identity)
	Delete(ctx context.Context, sessionToken string)
	Close() error
}

type identityCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewIdentityCache(log *logger.Logger) (IdentityCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttlSeconds := utils.GetEnvAsInt("IDENTITY_CACHE_TTL_SECONDS", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &identityCache{
		log: log.With("client", "RedisIdentityCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// Keys are hashes of the session token so the token itself never lands in
// the store.
func cacheKey(sessionToken string) string {
	sum := sha256.Sum256([]byte(sessionToken))
	return "moodlens:identity:" + hex.EncodeToString(sum[:])
}

func (c *identityCache) Get(ctx context.Context, sessionToken string) (*identity.Identity, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(sessionToken)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("identity cache get failed", "error", err)
		}
		return nil, false
	}
	var ident identity.Identity
	if err := json.Unmarshal(raw, &ident); err != nil {
		c.log.Warn("identity cache entry corrupt, dropping", "error", err)
		_ = c.rdb.Del(ctx, cacheKey(sessionToken)).Err()
		return nil, false
	}
	return &ident, true
}

func (c *identityCache) Set(ctx context.Context, sessionToken string, ident *identity.Identity) {
	raw, err := json.Marshal(ident)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(sessionToken), raw, c.ttl).Err(); err != nil {
		c.log.Warn("identity cache set failed", "error", err)
	}
}

func (c *identityCache) Delete(ctx context.Context, sessionToken string) {
	if err := c.rdb.Del(ctx, cacheKey(sessionToken)).Err(); err != nil {
		c.log.Warn("identity cache delete failed", "error", err)
	}
}

func (c *identityCache) Close() error {
	return c.rdb.Close()
}
