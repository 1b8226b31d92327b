package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"supportflow/internal/types"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "can": {}, "do": {}, "for": {},
	"how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "was": {}, "what": {}, "with": {}, "you": {}, "your": {}, "me": {},
}

// MemorySearcher ranks articles by token overlap with the query. It backs
// local runs and tests where no vector database is available.
type MemorySearcher struct {
	mu       sync.RWMutex
	articles []types.KBArticle
	tokens   []map[string]struct{}
}

func NewMemorySearcher(articles ...types.KBArticle) *MemorySearcher {
	m := &MemorySearcher{}
	_, _ = m.Index(context.Background(), articles)
	return m
}

func (m *MemorySearcher) Index(_ context.Context, articles []types.KBArticle) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		m.articles = append(m.articles, a)
		m.tokens = append(m.tokens, tokenSet(a.Title+" "+a.Content+" "+a.Category))
	}
	return len(articles), nil
}

func (m *MemorySearcher) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := tokenSet(query)
	if len(q) == 0 || topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []types.KBArticle
	for i, a := range m.articles {
		n := 0
		for tok := range q {
			if _, ok := m.tokens[i][tok]; ok {
				n++
			}
		}
		if n == 0 {
			continue
		}
		a.Relevance = float64(n) / float64(len(q))
		hits = append(hits, a)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Relevance != hits[j].Relevance {
			return hits[i].Relevance > hits[j].Relevance
		}
		return hits[i].ArticleID < hits[j].ArticleID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
