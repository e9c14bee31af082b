package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, 384), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, 384)
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string  { return "fake" }
func (f *fakeEmbedder) Dimension() int { return 384 }

type fakeSearcher struct {
	hits       []models.Hit
	err        error
	collection string
	platform   string
	topK       int
}

func (f *fakeSearcher) SearchFeedback(_ context.Context, collection string, _ []float32, topK int, platformKey string) ([]models.Hit, error) {
	f.collection = collection
	f.platform = platformKey
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestQueryUnknownBrand(t *testing.T) {
	g := NewGateway(&fakeSearcher{}, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())

	_, err := g.Query(context.Background(), "sprint", "", "coverage", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBrand)
}

func TestQueryUnknownPlatform(t *testing.T) {
	g := NewGateway(&fakeSearcher{}, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())

	_, err := g.Query(context.Background(), "tmobile", "myspace", "coverage", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestQueryRoutesToBrandCollection(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.Hit{{Text: "dropped calls", Platform: "reddit"}}}
	g := NewGateway(searcher, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())

	hits, err := g.Query(context.Background(), "verizon", "reddit", "dropped calls", 7)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "feedback_verizon", searcher.collection)
	assert.Equal(t, "reddit", searcher.platform)
	assert.Equal(t, 7, searcher.topK)
}

func TestQueryZeroTopK(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.Hit{{Text: "should not appear"}}}
	g := NewGateway(searcher, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())

	hits, err := g.Query(context.Background(), "att", "", "billing", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Empty(t, searcher.collection, "search should not run for zero top_k")
}

func TestQuerySafeSwallowsErrors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		g := NewGateway(&fakeSearcher{}, &fakeEmbedder{err: errors.New("model offline")}, config.DefaultCatalog(), nil, discardLogger())
		hits := g.QuerySafe(context.Background(), "tmobile", "reddit", "5g speed", 5)
		assert.Empty(t, hits)
	})

	t.Run("search failure", func(t *testing.T) {
		g := NewGateway(&fakeSearcher{err: errors.New("connection refused")}, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())
		hits := g.QuerySafe(context.Background(), "tmobile", "reddit", "5g speed", 5)
		assert.Empty(t, hits)
	})

	t.Run("unknown brand", func(t *testing.T) {
		g := NewGateway(&fakeSearcher{}, &fakeEmbedder{}, config.DefaultCatalog(), nil, discardLogger())
		hits := g.QuerySafe(context.Background(), "nokia", "", "anything", 5)
		assert.Empty(t, hits)
	})
}
