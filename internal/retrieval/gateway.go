// Package retrieval performs semantic search over the feedback corpus,
// combining query embedding with per-brand vector search.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/models"
)

var (
	// ErrUnknownBrand is returned when a brand key is not in the catalog.
	ErrUnknownBrand = errors.New("unknown brand")

	// ErrUnknownPlatform is returned when a platform key is not in the catalog.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Searcher is the vector search surface the gateway needs from the database.
type Searcher interface {
	SearchFeedback(ctx context.Context, collection string, embedding []float32, topK int, platformKey string) ([]models.Hit, error)
}

// Gateway embeds search queries and runs vector search against the
// per-brand feedback collections.
type Gateway struct {
	searcher  Searcher
	embedder  llm.Embedder
	catalog   *config.Catalog
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewGateway creates a retrieval gateway. The collector may be nil.
func NewGateway(searcher Searcher, embedder llm.Embedder, catalog *config.Catalog, collector *metrics.Collector, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		searcher:  searcher,
		embedder:  embedder,
		catalog:   catalog,
		collector: collector,
		logger:    logger,
	}
}

// Catalog returns the brand and platform catalog the gateway searches over.
func (g *Gateway) Catalog() *config.Catalog {
	return g.catalog
}

// Query searches one brand's collection for feedback similar to searchQuery.
// An empty platformKey searches across all platforms. Brand and platform
// keys are validated against the catalog.
func (g *Gateway) Query(ctx context.Context, brandKey, platformKey, searchQuery string, topK int) ([]models.Hit, error) {
	brand, ok := g.catalog.BrandByKey(brandKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrand, brandKey)
	}
	if platformKey != "" {
		if _, ok := g.catalog.PlatformByKey(platformKey); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platformKey)
		}
	}
	if topK <= 0 {
		return []models.Hit{}, nil
	}

	start := time.Now()
	embedding, err := g.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if g.collector != nil {
		g.collector.RecordTiming(metrics.OpEmbedding, time.Since(start))
	}

	start = time.Now()
	hits, err := g.searcher.SearchFeedback(ctx, brand.Collection, embedding, topK, platformKey)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", brand.Collection, err)
	}
	if g.collector != nil {
		g.collector.RecordTiming(metrics.OpDBSearch, duration)
	}

	g.logger.Debug("retrieval query",
		"brand", brandKey,
		"platform", platformKey,
		"top_k", topK,
		"hits", len(hits),
		"duration_ms", duration.Milliseconds())

	return hits, nil
}

// QuerySafe is Query with failure isolation: any error is logged and an
// empty result returned, so one failing slice of a fan-out cannot sink the
// others.
func (g *Gateway) QuerySafe(ctx context.Context, brandKey, platformKey, searchQuery string, topK int) []models.Hit {
	hits, err := g.Query(ctx, brandKey, platformKey, searchQuery, topK)
	if err != nil {
		g.logger.Warn("retrieval query failed",
			"brand", brandKey,
			"platform", platformKey,
			"error", err)
		return []models.Hit{}
	}
	return hits
}
