package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"supportflow/internal/types"
)

var kb = []types.KBArticle{
	{ArticleID: "kb-refund", Title: "Refund policy", Content: "Refunds for cancelled events are issued to the original card within 5 business days.", Category: "refund"},
	{ArticleID: "kb-parking", Title: "Parking at venues", Content: "Most venues offer parking. Check the event page for details.", Category: "general"},
	{ArticleID: "kb-login", Title: "Login problems", Content: "Reset your password from the sign in page.", Category: "technical"},
}

func TestMemorySearcher_RanksByOverlap(t *testing.T) {
	s := NewMemorySearcher(kb...)
	got, err := s.Search(context.Background(), "Refund request: my event was cancelled", 3)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "kb-refund", got[0].ArticleID)
	assert.Greater(t, got[0].Relevance, 0.0)
	assert.LessOrEqual(t, got[0].Relevance, 1.0)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Relevance, got[i].Relevance)
	}
}

func TestMemorySearcher_NoMatchAndTopK(t *testing.T) {
	s := NewMemorySearcher(kb...)
	got, err := s.Search(context.Background(), "zebra xylophone", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(context.Background(), "refund parking password", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

type countingSearcher struct {
	calls int
	err   error
}

func (c *countingSearcher) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []types.KBArticle{{ArticleID: "kb-1", Relevance: 0.9}}, nil
}

func TestCachedSearcher_HitsAfterFirstCall(t *testing.T) {
	inner := &countingSearcher{}
	c := NewCachedSearcher(inner, 16, time.Minute)

	first, err := c.Search(context.Background(), "Refund  Request", 3)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "refund request", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached result mismatch (-first +second):\n%s", diff)
	}

	second[0].Title = "mutated"
	third, _ := c.Search(context.Background(), "refund request", 3)
	assert.Empty(t, third[0].Title)

	_, _ = c.Search(context.Background(), "refund request", 5)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcher_DoesNotCacheErrors(t *testing.T) {
	inner := &countingSearcher{err: errors.New("down")}
	c := NewCachedSearcher(inner, 16, time.Minute)
	_, err := c.Search(context.Background(), "q", 3)
	assert.Error(t, err)
	_, _ = c.Search(context.Background(), "q", 3)
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Len())
}

func TestRedisCache_DegradesWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	inner := &countingSearcher{}
	rc := NewRedisCache(inner, client, time.Minute, nil)
	defer rc.Close()

	got, err := rc.Search(context.Background(), "refund", 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.calls)
}

const getPayload = `{
  "Get": {
    "KnowledgeArticle": [
      {"articleId": "kb-1", "title": "Refunds", "content": "body", "category": "refund",
       "_additional": {"id": "uuid-1", "certainty": 0.87, "distance": 0.26}},
      {"title": "Parking",
       "_additional": {"id": "uuid-2", "certainty": null, "distance": 0.4}},
      "garbage"
    ]
  }
}`

func TestParseArticles(t *testing.T) {
	var data map[string]models.JSONObject
	require.NoError(t, json.Unmarshal([]byte(getPayload), &data))

	got := parseArticles(data, DefaultClass)
	want := []types.KBArticle{
		{ArticleID: "kb-1", Title: "Refunds", Content: "body", Category: "refund", Relevance: 0.87},
		{ArticleID: "uuid-2", Title: "Parking", Relevance: 0.6},
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })); diff != "" {
		t.Fatalf("parseArticles mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArticles_MissingClass(t *testing.T) {
	assert.Nil(t, parseArticles(map[string]models.JSONObject{}, DefaultClass))
	assert.Nil(t, parseArticles(map[string]models.JSONObject{"Get": map[string]interface{}{"Other": []interface{}{}}}, DefaultClass))
}
