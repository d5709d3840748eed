package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultIdempotencyTTL is how long a response stays paired to its idempotency key.
const DefaultIdempotencyTTL = 24 * time.Hour

const idempotencyPrefix = "trailhead:idempotency:"

var (
	idempotencyLock sync.Mutex
	_               IdempotencyCacher = make(IdemResMap)
	_               IdempotencyCacher = IdemResRedis{}
)

// An IdempotencyCacher can store responses paired to idempotency keys.
//
// An IdempotencyCacher ought return newly initialized IdemRes
// when a key does not match an existing IdemRes
type IdempotencyCacher interface {
	Get(ctx context.Context, key string) (IdemRes, bool)
	Set(ctx context.Context, key string, idemRes IdemRes)
}

// An IdemResMap stores idempotency key, IdemRes value pairs in a map.
//
// Server restarts reset this map.
// An IdemResMap ought not be used when several trailhead processes serve the same users.
type IdemResMap map[string]IdemResMapVal

// NewIdemResMap constructs initializes an IdemResMap
// for use in an Idempotency middleware as a cache.
func NewIdemResMap() IdemResMap { return make(IdemResMap) }

// An IdemResMapVal is stored in an IdemResMap,
// wrapping an IdemRes.
type IdemResMapVal struct {
	IdemRes

	at time.Time
}

// Get retrieves the result of the request matching the idempotency key
// much like a regular map.
func (i IdemResMap) Get(ctx context.Context, key string) (IdemRes, bool) {
	if key == "" {
		return IdemRes{}, false
	}

	select {
	case <-ctx.Done():
		return IdemRes{}, false

	default:
		idempotencyLock.Lock()
		defer idempotencyLock.Unlock()

		v, ok := i[key]
		if !ok || time.Since(v.at) > DefaultIdempotencyTTL {
			return IdemRes{}, false
		}

		return v.IdemRes, true
	}
}

// Set overwrites the value paired to key in the map.
//
// For each call to Set, keys older than DefaultIdempotencyTTL are evicted.
func (i IdemResMap) Set(ctx context.Context, key string, idemRes IdemRes) {
	select {
	case <-ctx.Done():
		return
	default:
		idempotencyLock.Lock()
		defer idempotencyLock.Unlock()

		for k, v := range i {
			if time.Since(v.at) > DefaultIdempotencyTTL {
				delete(i, k)
			}
		}

		at := time.Now()
		if prev, ok := i[key]; ok {
			at = prev.at
		}

		i[key] = IdemResMapVal{IdemRes: idemRes, at: at}
	}
}

// An IdemResRedis connects to a Redis backend
// for the purposes of caching idempotent responses.
type IdemResRedis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs an IdemResRedis with the options passed in.
// Keys expire after ttl; non-positive values use DefaultIdempotencyTTL.
func NewRedisCache(opts *redis.Options, ttl time.Duration) IdemResRedis {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return IdemResRedis{client: redis.NewClient(opts), ttl: ttl}
}

// Close releases the connections to the Redis backend.
func (i IdemResRedis) Close() error { return i.client.Close() }

// Ping checks the Redis backend is reachable.
func (i IdemResRedis) Ping(ctx context.Context) error { return i.client.Ping(ctx).Err() }

// Get retrieves the *IdemRes paired to key from the connected Redis backend.
func (i IdemResRedis) Get(ctx context.Context, key string) (IdemRes, bool) {
	select {
	case <-ctx.Done():
		return IdemRes{}, false
	default:
		b, err := i.client.Get(ctx, idempotencyPrefix+key).Bytes()
		if err != nil {
			return IdemRes{}, false
		}

		ir := new(IdemRes)
		if err := ir.GobDecode(b); err != nil {
			return IdemRes{}, false
		}

		return *ir, true
	}
}

// Set saves the *IdemRes by pairing it to the key in the Redis backend.
func (i IdemResRedis) Set(ctx context.Context, key string, idemRes IdemRes) {
	select {
	case <-ctx.Done():
		return
	default:
		b, err := idemRes.GobEncode()
		if err != nil {
			return
		}

		i.client.Set(ctx, idempotencyPrefix+key, b, i.ttl)
	}
}
