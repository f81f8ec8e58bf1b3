package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	tokenCachePrefix = "identity:token:"
	userCachePrefix  = "identity:user:"
	cacheTTL         = 5 * time.Minute
)

// CachingProvider wraps another Provider with a Redis cache for token and
// user-id resolution. Cache misses and Redis errors fall through to the
// wrapped provider; the cache is never authoritative.
type CachingProvider struct {
	Next Provider
	Rdb  *redis.Client
}

func (p *CachingProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if id := p.cached(ctx, tokenCachePrefix+token); id != nil {
		return id, nil
	}
	id, err := p.Next.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	p.store(ctx, tokenCachePrefix+token, id)
	return id, nil
}

func (p *CachingProvider) GetUserByID(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	if id := p.cached(ctx, userCachePrefix+userID.String()); id != nil {
		return id, nil
	}
	id, err := p.Next.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.store(ctx, userCachePrefix+userID.String(), id)
	return id, nil
}

func (p *CachingProvider) CreateUser(ctx context.Context, email, password, name, role string) (*Identity, error) {
	return p.Next.CreateUser(ctx, email, password, name, role)
}

func (p *CachingProvider) cached(ctx context.Context, key string) *Identity {
	if p.Rdb == nil {
		return nil
	}
	b, err := p.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return nil
	}
	return &id
}

func (p *CachingProvider) store(ctx context.Context, key string, id *Identity) {
	if p.Rdb == nil {
		return
	}
	b, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := p.Rdb.Set(ctx, key, b, cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("identity cache write failed")
	}
}
