package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached opens the client backing the resolved-profile cache.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
