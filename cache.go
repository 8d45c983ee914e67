package quercus

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quercus-js/quercus/internal/parser"
)

// Cache memoizes parse results for tooling hosts that repeatedly parse
// unchanged sources (linters, language servers). Keys cover the source
// text, the source type, and the whole option fingerprint, so two
// configurations never share an entry.
//
// Cached results are shared: callers must treat the returned tree as
// immutable. A Cache is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[cacheKey, *Result]
}

type cacheKey struct {
	src string
	cfg parser.Config
}

// NewCache creates a cache holding up to size parse results.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[cacheKey, *Result](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Parse behaves like the package-level Parse with memoization.
func (c *Cache) Parse(src string, opts ...Option) (*Result, error) {
	key := cacheKey{src: src, cfg: buildConfig(opts)}
	if res, ok := c.entries.Get(key); ok {
		return res, nil
	}
	res, err := run(src, opts)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, res)
	return res, nil
}

// ParseScript behaves like the package-level ParseScript with memoization.
func (c *Cache) ParseScript(src string, opts ...Option) (*Result, error) {
	return c.Parse(src, append(opts, SourceType("script"))...)
}

// ParseModule behaves like the package-level ParseModule with memoization.
func (c *Cache) ParseModule(src string, opts ...Option) (*Result, error) {
	return c.Parse(src, append(opts, SourceType("module"))...)
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.entries.Purge()
}
