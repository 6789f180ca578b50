// Package cache holds the two caches used by the service.
//
// LRUCache is a bounded, generic in-process cache with optional per-entry
// expiry. Billing uses it to remember price ids that were already validated
// against the payment processor.
//
// Store is a byte-oriented key/value cache with TTLs and two backends:
// MemoryStore (github.com/patrickmn/go-cache) for single-instance deployments
// and RedisStore (github.com/redis/go-redis/v9) when replicas must share
// state. GetJSON and SetJSON encode values on top of any Store.
package cache
