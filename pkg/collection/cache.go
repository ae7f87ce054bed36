package collection

import (
	"strconv"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	config "github.com/mwantia/mugenvault/internal/config/server"
	"github.com/mwantia/mugenvault/pkg/rules"
)

// Cache stores evaluation results keyed by query hash and library version.
// A newer library version never hits entries written for an older one.
type Cache interface {
	Get(queryHash uint64, version int64) (rules.Result, bool)
	Set(queryHash uint64, version int64, result rules.Result)
}

type freeCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewCache returns a freecache backed cache, or a no-op cache when disabled.
func NewCache(cfg config.CacheServerConfig) Cache {
	if !cfg.Enabled || cfg.SizeMB <= 0 {
		return noopCache{}
	}

	return &freeCache{
		cache: freecache.NewCache(cfg.SizeMB * 1024 * 1024),
		ttl:   cfg.TTL,
	}
}

func cacheKey(queryHash uint64, version int64) []byte {
	key := make([]byte, 0, 40)
	key = strconv.AppendUint(key, queryHash, 16)
	key = append(key, ':')
	return strconv.AppendInt(key, version, 10)
}

func (c *freeCache) Get(queryHash uint64, version int64) (rules.Result, bool) {
	data, err := c.cache.Get(cacheKey(queryHash, version))
	if err != nil {
		return rules.Result{}, false
	}

	var result rules.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return rules.Result{}, false
	}
	return result, true
}

func (c *freeCache) Set(queryHash uint64, version int64, result rules.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	// Oversized entries are rejected by freecache, the result is simply not cached.
	_ = c.cache.Set(cacheKey(queryHash, version), data, c.ttl)
}

type noopCache struct{}

func (noopCache) Get(uint64, int64) (rules.Result, bool) { return rules.Result{}, false }
func (noopCache) Set(uint64, int64, rules.Result)        {}
