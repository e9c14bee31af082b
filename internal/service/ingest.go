package service

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

// embedBatchSize bounds embedding requests so one oversized ingest cannot
// blow past provider payload limits.
const embedBatchSize = 32

// Store is the persistence surface the ingest service needs.
type Store interface {
	UpsertFeedback(ctx context.Context, collection string, doc models.FeedbackDocument) (*models.FeedbackDocument, error)
}

// IngestResult summarizes one ingest run.
type IngestResult struct {
	Ingested int
	Skipped  int
	Failed   int
}

// IngestService classifies, embeds, and persists raw feedback documents.
type IngestService struct {
	store     Store
	embedder  llm.Embedder
	catalog   *config.Catalog
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewIngestService creates the ingest service. The collector may be nil.
func NewIngestService(store Store, embedder llm.Embedder, catalog *config.Catalog, collector *metrics.Collector, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		store:     store,
		embedder:  embedder,
		catalog:   catalog,
		collector: collector,
		logger:    logger,
	}
}

// IngestBrand processes raw documents into one brand's collection. Documents
// missing text, platform, or source id are skipped; classifier fields are
// filled in when absent. A fatal API error aborts the run since every
// remaining document would hit the same wall.
func (s *IngestService) IngestBrand(ctx context.Context, brandKey string, docs []models.FeedbackDocument) (IngestResult, error) {
	var result IngestResult

	brand, ok := s.catalog.BrandByKey(brandKey)
	if !ok {
		return result, fmt.Errorf("unknown brand %q", brandKey)
	}

	valid := make([]models.FeedbackDocument, 0, len(docs))
	for _, doc := range docs {
		platform, ok := s.catalog.PlatformByKey(doc.Platform)
		if !ok || doc.Text == "" || doc.SourcePostID == "" {
			s.logger.Warn("skipping document",
				"brand", brandKey,
				"platform", doc.Platform,
				"source_post_id", doc.SourcePostID)
			result.Skipped++
			continue
		}

		doc.Brand = brand.Key
		if doc.Category == "" {
			if platform.HasRating {
				doc.Category = ClassifyStoreReview(doc.Text)
			} else {
				doc.Category = ClassifyCommunityPost(doc.Text)
			}
		}
		if doc.Sentiment == "" {
			if platform.HasRating {
				doc.Sentiment = SentimentFromRating(doc.Rating)
			} else {
				doc.Sentiment = SentimentNeutral
			}
		}
		valid = append(valid, doc)
	}

	for start := 0; start < len(valid); start += embedBatchSize {
		end := min(start+embedBatchSize, len(valid))
		batch := valid[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}

		embedStart := time.Now()
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if s.collector != nil {
			s.collector.RecordTiming(metrics.OpEmbedding, time.Since(embedStart))
		}
		if err != nil {
			if errors.Is(err, llm.ErrFatalAPI) {
				return result, fmt.Errorf("embed batch: %w", err)
			}
			s.logger.Warn("embedding batch failed", "batch_start", start, "error", err)
			result.Failed += len(batch)
			continue
		}

		for i := range batch {
			batch[i].Embedding = embeddings[i]
			if _, err := s.store.UpsertFeedback(ctx, brand.Collection, batch[i]); err != nil {
				s.logger.Warn("upsert failed",
					"collection", brand.Collection,
					"source_post_id", batch[i].SourcePostID,
					"error", err)
				result.Failed++
				continue
			}
			result.Ingested++
		}
	}

	s.logger.Info("ingest complete",
		"brand", brandKey,
		"ingested", result.Ingested,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}
