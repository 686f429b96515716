// Package cache provides a generic Cache interface with in-memory and Redis implementations.
//
// Both implementations share the same [Cache] interface, making it easy to swap
// backends or use in-memory caching for development and Redis for production.
//
// # Interface
//
// The [Cache] interface is generic over value type V:
//
//   - Get(ctx, key) (V, error) — retrieve a value
//   - Set(ctx, key, value, ttl) error — store a value with TTL
//   - Delete(ctx, key) error — remove a key
//   - Has(ctx, key) (bool, error) — check existence
//   - Clear(ctx) error — remove all entries
//   - Close() error — release resources
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL (1 hour by default)
//   - Negative: item never expires
//
// # In-Memory Cache
//
// Use [NewMemory] for single-process applications or testing.
// It uses a hash map for O(1) lookups and a doubly-linked list for O(1)
// LRU eviction, with TTL-based expiration via a background janitor goroutine:
//
//	c := cache.NewMemory[bool](
//	    cache.WithDefaultTTL(30 * time.Second),
//	)
//	defer c.Close()
//
// This is the shape pkg/taskqueue.Registry uses for its per-worker
// task-type presence cache: a single worker process caches a positive
// registry lookup as cache.NewMemory[bool], so Create's registry-gate
// check does not round-trip to RegistryStore on every call.
//
// # Eviction Callbacks
//
// The in-memory cache supports eviction callbacks for resource cleanup,
// triggered on LRU eviction, TTL expiration cleanup, manual deletion, and
// clearing:
//
//	c := cache.NewMemory[*sql.Conn](cache.WithMaxEntries(100))
//	c.SetEvictCallback(func(key string, conn *sql.Conn) {
//	    conn.Close()
//	})
//
// # Redis Cache
//
// Use [NewRedis] when several worker processes must share one cache
// instead of each keeping its own: a task type registered by one worker
// becomes visible to the rest of the fleet as soon as the Redis entry is
// set, rather than waiting out each process's own TTL. Requires a
// [github.com/redis/go-redis/v9.UniversalClient] from
// [github.com/taskforge/core/pkg/redis]:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[bool](client, nil,
//	    cache.WithPrefix("taskforge:task-types"),
//	    cache.WithRedisDefaultTTL(30 * time.Second),
//	)
//
// Pass a custom [Marshaler] as the second argument to [NewRedis] to use
// a different serialization format (msgpack, protobuf, etc.).
// If nil, JSON is used.
//
// # Cache Stampede Prevention
//
// The standalone [GetOrSet] function prevents cache stampedes by using
// singleflight to ensure only one goroutine computes a missing value —
// useful for caches where every miss is equally expensive to refill,
// unlike the registry's existence cache which deliberately never caches
// a miss (see [github.com/taskforge/core/pkg/taskqueue.Registry.Exists]):
//
//	val, err := cache.GetOrSet(ctx, c, "user:123", func(ctx context.Context) (User, time.Duration, error) {
//	    user, err := repo.FindUser(ctx, "123")
//	    return user, 5 * time.Minute, err
//	})
//
// # Error Handling
//
// The package defines sentinel errors:
//
//   - [ErrNotFound] — key does not exist or has expired
//   - [ErrClosed] — operation on a closed cache
//   - [ErrMarshal] — value serialization failed
//   - [ErrUnmarshal] — value deserialization failed
//
// Use [errors.Is] to check:
//
//	val, err := c.Get(ctx, "key")
//	if errors.Is(err, cache.ErrNotFound) {
//	    // handle miss
//	}
package cache
