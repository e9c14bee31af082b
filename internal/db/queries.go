package db

import (
	"context"
	"fmt"

	"github.com/echolens/echolens/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// hnswEF is the HNSW search expansion factor. 40 trades a little latency for
// better recall on small top-k queries.
const hnswEF = 40

// UpsertFeedback creates or replaces a feedback document in the given brand
// collection. The record id derives from (platform, source_post_id), so
// re-ingesting the same source post updates in place.
func (c *Client) UpsertFeedback(ctx context.Context, collection string, doc models.FeedbackDocument) (*models.FeedbackDocument, error) {
	sql := fmt.Sprintf(`UPSERT type::record("%s", $id) CONTENT $doc RETURN AFTER`, collection)

	vars := map[string]any{
		"id":  models.DedupKey(doc.Platform, doc.SourcePostID),
		"doc": doc,
	}

	results, err := surrealdb.Query[[]models.FeedbackDocument](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("upsert feedback: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("upsert feedback: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// SearchFeedback runs a KNN query against one brand collection, optionally
// filtered to a single platform. Results are ordered best match first.
func (c *Client) SearchFeedback(
	ctx context.Context,
	collection string,
	embedding []float32,
	topK int,
	platformKey string,
) ([]models.Hit, error) {
	platformClause := ""
	if platformKey != "" {
		platformClause = "AND platform = $platform"
	}

	sql := fmt.Sprintf(`
		SELECT id, text, platform, source_post_id, sentiment, category, rating,
		       engagement_score, created_date, author, title, url,
		       vector::similarity::cosine(embedding, $emb) AS similarity
		FROM %s
		WHERE embedding <|%d,%d|> $emb %s
		ORDER BY similarity DESC
	`, collection, topK, hnswEF, platformClause)

	vars := map[string]any{"emb": embedding}
	if platformKey != "" {
		vars["platform"] = platformKey
	}

	results, err := surrealdb.Query[[]models.Hit](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search feedback: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.Hit{}, nil
}

// CountFeedback returns per-platform document counts for one brand collection.
func (c *Client) CountFeedback(ctx context.Context, collection string) ([]models.PlatformCount, error) {
	sql := fmt.Sprintf(`
		SELECT platform, count() AS count FROM %s GROUP BY platform ORDER BY platform
	`, collection)

	results, err := surrealdb.Query[[]models.PlatformCount](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return []models.PlatformCount{}, nil
}

// TotalCount returns the total document count for one brand collection.
func (c *Client) TotalCount(ctx context.Context, collection string) (int, error) {
	sql := fmt.Sprintf(`SELECT count() AS count FROM %s GROUP ALL`, collection)

	results, err := surrealdb.Query[[]struct {
		Count int `json:"count"`
	}](ctx, c.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("total count: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count, nil
	}
	return 0, nil
}
