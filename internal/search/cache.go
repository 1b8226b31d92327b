package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"supportflow/internal/types"
)

// CachedSearcher keeps recent query results in process. Errors are not cached.
type CachedSearcher struct {
	next  Searcher
	cache *expirable.LRU[string, []types.KBArticle]
}

func NewCachedSearcher(next Searcher, size int, ttl time.Duration) *CachedSearcher {
	if size <= 0 {
		size = 1024
	}
	return &CachedSearcher{
		next:  next,
		cache: expirable.NewLRU[string, []types.KBArticle](size, nil, ttl),
	}
}

func (c *CachedSearcher) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	key := queryKey(query, topK)
	if arts, ok := c.cache.Get(key); ok {
		return cloneArticles(arts), nil
	}
	arts, err := c.next.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneArticles(arts))
	return arts, nil
}

// Len reports the number of cached queries.
func (c *CachedSearcher) Len() int { return c.cache.Len() }

func queryKey(query string, topK int) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(norm + "|" + strconv.Itoa(topK)))
	return hex.EncodeToString(sum[:16])
}

func cloneArticles(in []types.KBArticle) []types.KBArticle {
	if in == nil {
		return nil
	}
	out := make([]types.KBArticle, len(in))
	copy(out, in)
	return out
}
