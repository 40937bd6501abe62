package profile

import (
	"context"
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	applog "github.com/janisto/profile-directory/internal/platform/logging"
)

const (
	cacheKeyPrefix = "profile:key:"
	genKeyPrefix   = "profile:gen:"
)

// errStaleRead aborts a cache fill that raced with a mutation.
var errStaleRead = errors.New("profile changed during read")

// cacheEncMode keeps timestamps at full precision; the default CBOR time
// encoding truncates to whole seconds.
var cacheEncMode = mustEncMode(cbor.EncOptions{Time: cbor.TimeRFC3339Nano})

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// CachedService decorates a Service with a Redis read-through cache for key
// lookups. Cache failures are logged and fall through to the wrapped store.
//
// Every key has a generation counter that mutations bump after they commit.
// A read only fills the cache if the generation it saw before loading is
// still current when the fill executes, so a load that overlaps a mutation
// never writes the old record back.
type CachedService struct {
	next   Service
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCachedService wraps next with a Redis cache whose entries live for ttl.
func NewCachedService(next Service, client redis.UniversalClient, ttl time.Duration) *CachedService {
	return &CachedService{next: next, client: client, ttl: ttl}
}

func cacheKey(key string) string {
	return cacheKeyPrefix + key
}

func genKey(key string) string {
	return genKeyPrefix + key
}

func (c *CachedService) Create(ctx context.Context, params CreateParams) (*Profile, error) {
	p, err := c.next.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, p.Key)
	return p, nil
}

func (c *CachedService) List(ctx context.Context) ([]*Profile, error) {
	return c.next.List(ctx)
}

func (c *CachedService) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	return c.next.GetByUsername(ctx, username)
}

func (c *CachedService) GetByKey(ctx context.Context, key string) (*Profile, error) {
	if p, ok := c.load(ctx, key); ok {
		return p, nil
	}
	gen, genOK := c.generation(ctx, key)
	p, err := c.next.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.fill(ctx, p, gen)
	}
	return p, nil
}

func (c *CachedService) Update(ctx context.Context, key string, params UpdateParams) (*Profile, error) {
	p, err := c.next.Update(ctx, key, params)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, key)
	if p.Key != key {
		c.invalidate(ctx, p.Key)
	}
	return p, nil
}

func (c *CachedService) Delete(ctx context.Context, key string) error {
	if err := c.next.Delete(ctx, key); err != nil {
		return err
	}
	c.invalidate(ctx, key)
	return nil
}

func (c *CachedService) load(ctx context.Context, key string) (*Profile, bool) {
	data, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			applog.LogWarn(ctx, "profile cache read failed", zap.String("profileKey", key), zap.Error(err))
		}
		return nil, false
	}
	var p Profile
	if err := cbor.Unmarshal(data, &p); err != nil {
		applog.LogWarn(ctx, "profile cache decode failed", zap.String("profileKey", key), zap.Error(err))
		return nil, false
	}
	return &p, true
}

// generation returns the current generation of key. A missing counter reads
// as zero.
func (c *CachedService) generation(ctx context.Context, key string) (int64, bool) {
	gen, err := c.client.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		applog.LogWarn(ctx, "profile cache generation read failed", zap.String("profileKey", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// fill caches p if the generation of its key is still gen. The WATCH makes
// the check and the write atomic with respect to invalidate.
func (c *CachedService) fill(ctx context.Context, p *Profile, gen int64) {
	data, err := cacheEncMode.Marshal(p)
	if err != nil {
		applog.LogWarn(ctx, "profile cache encode failed", zap.String("profileKey", p.Key), zap.Error(err))
		return
	}

	gk := genKey(p.Key)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(p.Key), data, c.ttl)
			return nil
		})
		return err
	}, gk)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		applog.LogInfo(ctx, "profile cache fill skipped after concurrent change", zap.String("profileKey", p.Key))
	default:
		applog.LogWarn(ctx, "profile cache write failed", zap.String("profileKey", p.Key), zap.Error(err))
	}
}

// invalidate bumps the generation of key and drops its entry. The counter
// outlives cache entries so a fill that started before the bump is refused.
func (c *CachedService) invalidate(ctx context.Context, key string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(key))
		if c.ttl > 0 {
			pipe.Expire(ctx, genKey(key), 2*c.ttl)
		}
		pipe.Del(ctx, cacheKey(key))
		return nil
	})
	if err != nil {
		applog.LogWarn(ctx, "profile cache invalidate failed", zap.String("profileKey", key), zap.Error(err))
	}
}

// Compile-time interface check
var _ Service = (*CachedService)(nil)
