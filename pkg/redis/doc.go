// Package redis connects to Redis through go-redis and exposes a readiness
// check. Redis is optional: when REDIS_URL is empty the caches and the rate
// limiter keep their state in memory.
package redis
