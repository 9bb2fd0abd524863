package format

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached remembers formatted markup so identical chapters are formatted once
// per process.
type Cached struct {
	next     Formatter
	provider string
	cache    *cache.Cache
}

func NewCached(provider string, next Formatter, ttl time.Duration) *Cached {
	return &Cached{
		next:     next,
		provider: provider,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Format(ctx context.Context, chapter string, style Style) (string, error) {
	key := cacheKey(c.provider, chapter, style)
	if markup, found := c.cache.Get(key); found {
		return markup.(string), nil
	}
	markup, err := c.next.Format(ctx, chapter, style)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, markup, cache.DefaultExpiration)
	return markup, nil
}

func cacheKey(provider, chapter string, style Style) string {
	h := sha256.New()
	for _, part := range []string{provider, chapter, strconv.Itoa(style.FontSizePx), style.LineHeight} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
