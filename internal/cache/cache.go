package cache

import "time"

// Cache is the lookup cache used by the live strategy for DNS answers and
// robots.txt payloads. Values are process-local and never persisted.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
}

// DNSKey builds the cache key for a host's resolved addresses
func DNSKey(host string) string {
	return "dns:" + host
}

// RobotsKey builds the cache key for a host's robots.txt data
func RobotsKey(host string) string {
	return "robots:" + host
}
