// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage and an HTTP middleware.
//
// A Bucket holds Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each request consumes one token; when the bucket is empty the
// request is rejected until the next refill.
//
// MemoryStore keeps buckets in process. RedisStore shares them between
// replicas through an atomic Lua script.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       20,
//		RefillRate:     1,
//		RefillInterval: 3 * time.Second,
//	})
//	r.With(ratelimiter.Middleware(bucket, clientip.Key)).Post("/optimize", h)
package ratelimiter
