package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"

	"supportflow/internal/types"
)

const DefaultClass = "KnowledgeArticle"

// articleNamespace derives stable object ids from article ids so that
// re-indexing the same article overwrites instead of duplicating.
var articleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("supportflow/kb"))

// WeaviateSearcher runs nearText queries against a Weaviate class holding
// knowledge-base articles.
type WeaviateSearcher struct {
	client *weaviate.Client
	class  string
	log    *zap.Logger
}

func NewWeaviateSearcher(host, scheme, apiKey, class string, log *zap.Logger) (*WeaviateSearcher, error) {
	if scheme == "" {
		scheme = "http"
	}
	if class == "" {
		class = DefaultClass
	}
	cfg := weaviate.Config{Host: host, Scheme: scheme}
	if apiKey != "" {
		cfg.Headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	cli, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WeaviateSearcher{client: cli, class: class, log: log.Named("weaviate")}, nil
}

func (w *WeaviateSearcher) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	nearText := (&graphql.NearTextArgumentBuilder{}).WithConcepts([]string{query})
	result, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithNearText(nearText).
		WithFields(
			graphql.Field{Name: "articleId"},
			graphql.Field{Name: "title"},
			graphql.Field{Name: "content"},
			graphql.Field{Name: "category"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{
				{Name: "id"},
				{Name: "certainty"},
				{Name: "distance"},
			}},
		).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
		return nil, fmt.Errorf("weaviate search failed: %s", strings.Join(msgs, "; "))
	}
	return parseArticles(result.Data, w.class), nil
}

func parseArticles(data map[string]models.JSONObject, class string) []types.KBArticle {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[class].([]interface{})
	if !ok {
		return nil
	}
	out := make([]types.KBArticle, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		a := types.KBArticle{
			ArticleID: stringField(m, "articleId"),
			Title:     stringField(m, "title"),
			Content:   stringField(m, "content"),
			Category:  stringField(m, "category"),
		}
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			if a.ArticleID == "" {
				a.ArticleID = stringField(add, "id")
			}
			if c, ok := add["certainty"].(float64); ok {
				a.Relevance = c
			} else if d, ok := add["distance"].(float64); ok {
				a.Relevance = 1 - d
			}
		}
		a.Relevance = clamp01(a.Relevance)
		out = append(out, a)
	}
	return out
}

// Index upserts articles one object at a time; ids derive from ArticleID.
func (w *WeaviateSearcher) Index(ctx context.Context, articles []types.KBArticle) (int, error) {
	n := 0
	for _, a := range articles {
		id := uuid.NewSHA1(articleNamespace, []byte(a.ArticleID)).String()
		props := map[string]interface{}{
			"articleId": a.ArticleID,
			"title":     a.Title,
			"content":   a.Content,
			"category":  a.Category,
		}
		exists, err := w.client.Data().Checker().WithClassName(w.class).WithID(id).Do(ctx)
		if err != nil {
			return n, fmt.Errorf("check article %s: %w", a.ArticleID, err)
		}
		if exists {
			err = w.client.Data().Updater().WithClassName(w.class).WithID(id).WithProperties(props).Do(ctx)
		} else {
			_, err = w.client.Data().Creator().WithClassName(w.class).WithID(id).WithProperties(props).Do(ctx)
		}
		if err != nil {
			return n, fmt.Errorf("index article %s: %w", a.ArticleID, err)
		}
		n++
	}
	w.log.Info("articles indexed", zap.String("class", w.class), zap.Int("count", n))
	return n, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
