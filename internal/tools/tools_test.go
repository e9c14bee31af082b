package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRetriever returns canned hits per brand/platform pair and records the
// order in which pairs were queried.
type fakeRetriever struct {
	hits    map[string][]models.Hit
	errs    map[string]error
	queries []string
}

func pairKey(brand, platform string) string { return brand + "/" + platform }

func (f *fakeRetriever) Query(_ context.Context, brand, platform, _ string, _ int) ([]models.Hit, error) {
	key := pairKey(brand, platform)
	f.queries = append(f.queries, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.hits[key], nil
}

func (f *fakeRetriever) QuerySafe(ctx context.Context, brand, platform, query string, topK int) []models.Hit {
	hits, err := f.Query(ctx, brand, platform, query, topK)
	if err != nil {
		return []models.Hit{}
	}
	return hits
}

func testDeps(r Retriever) *Dependencies {
	return &Dependencies{Retriever: r, Catalog: config.DefaultCatalog()}
}

func TestRegistryOrder(t *testing.T) {
	reg := RegisterAll(testDeps(&fakeRetriever{}))

	assert.Equal(t, []string{
		"retrieve_brand_feedback",
		"retrieve_platform_feedback",
		"retrieve_competitive_comparison",
	}, reg.Names())

	defs := reg.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "retrieve_brand_feedback", defs[0].Function.Name)
}

func TestBrandFeedbackSectionsFollowCatalogOrder(t *testing.T) {
	r := &fakeRetriever{hits: map[string][]models.Hit{
		pairKey("tmobile", "reddit"):      {{Text: "coverage is spotty", Platform: "reddit", Category: "network_connectivity", Sentiment: "negative", EngagementScore: 42}},
		pairKey("tmobile", "google_play"): {{Text: "app works great", Platform: "google_play", Rating: 5, Sentiment: "positive"}},
		pairKey("tmobile", "app_store"):   {{Text: "login keeps failing", Platform: "app_store", Rating: 1, Sentiment: "negative"}},
	}}
	op := NewBrandFeedbackOp(testDeps(r))

	out, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "tmobile",
		"search_query": "app experience",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "[TMOBILE - COMPREHENSIVE MULTI-PLATFORM FEEDBACK]"))
	assert.Contains(t, out, "Search Query: app experience")

	reddit := strings.Index(out, "REDDIT COMMUNITY DISCUSSIONS (1 results)")
	play := strings.Index(out, "GOOGLE PLAY STORE REVIEWS (ANDROID) (1 results)")
	appStore := strings.Index(out, "APPLE APP STORE REVIEWS (IOS) (1 results)")
	require.True(t, reddit >= 0 && play >= 0 && appStore >= 0, "all platform sections present:\n%s", out)
	assert.Less(t, reddit, play)
	assert.Less(t, play, appStore)

	assert.Contains(t, out, "1. [network_connectivity] [negative]")
	assert.Contains(t, out, "Engagement Score: 42")
	assert.Contains(t, out, "Rating: ★★★★★/5")
	assert.Contains(t, out, "Rating: ★/5")
}

func TestBrandFeedbackFailedPlatformGetsEmptySection(t *testing.T) {
	r := &fakeRetriever{
		hits: map[string][]models.Hit{
			pairKey("verizon", "reddit"): {{Text: "throttling after 50GB", Platform: "reddit"}},
		},
		errs: map[string]error{
			pairKey("verizon", "google_play"): errors.New("connection refused"),
		},
	}
	op := NewBrandFeedbackOp(testDeps(r))

	out, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "verizon",
		"search_query": "data throttling",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "throttling after 50GB")
	assert.Contains(t, out, "GOOGLE PLAY STORE REVIEWS (ANDROID) (0 results)")
	assert.Contains(t, out, "No results found on Google Play Store Reviews (Android)")
	assert.Contains(t, out, "No results found on Apple App Store Reviews (iOS)")
	assert.NotContains(t, out, "connection refused")
}

func TestBrandFeedbackDefaultsAndTags(t *testing.T) {
	r := &fakeRetriever{hits: map[string][]models.Hit{
		pairKey("att", "app_store"): {{Text: "fine I guess", Platform: "app_store"}},
	}}
	op := NewBrandFeedbackOp(testDeps(r))

	out, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "att",
		"search_query": "general",
	})
	require.NoError(t, err)

	// Missing classifier fields fall back to general/neutral.
	assert.Contains(t, out, "1. [general] [neutral]")
	// Zero rating renders no rating line.
	assert.NotContains(t, out, "Rating:")
}

func TestBrandFeedbackUnknownBrand(t *testing.T) {
	op := NewBrandFeedbackOp(testDeps(&fakeRetriever{}))

	_, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "sprint",
		"search_query": "anything",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPRINT index not available")
}

func TestBrandFeedbackMissingArgs(t *testing.T) {
	op := NewBrandFeedbackOp(testDeps(&fakeRetriever{}))

	_, err := op.Invoke(context.Background(), map[string]any{"brand": "tmobile"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_query")
}

func TestPlatformFeedback(t *testing.T) {
	r := &fakeRetriever{hits: map[string][]models.Hit{
		pairKey("tmobile", "reddit"): {
			{Text: "5G is fast downtown"},
			{Text: "no bars in the subway"},
		},
	}}
	op := NewPlatformFeedbackOp(testDeps(r))

	out, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "tmobile",
		"platform":     "reddit",
		"search_query": "5g speed",
		"top_k":        float64(2),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "[TMOBILE - REDDIT]"))
	assert.Contains(t, out, "Search Query: 5g speed")
	assert.Contains(t, out, "1. 5G is fast downtown")
	assert.Contains(t, out, "2. no bars in the subway")
}

func TestPlatformFeedbackPropagatesSearchError(t *testing.T) {
	r := &fakeRetriever{errs: map[string]error{
		pairKey("att", "reddit"): errors.New("db unavailable"),
	}}
	op := NewPlatformFeedbackOp(testDeps(r))

	_, err := op.Invoke(context.Background(), map[string]any{
		"brand":        "att",
		"platform":     "reddit",
		"search_query": "outage",
	})
	require.Error(t, err)
}

func TestCompetitiveComparison(t *testing.T) {
	longText := strings.Repeat("x", 250)
	r := &fakeRetriever{
		hits: map[string][]models.Hit{
			pairKey("tmobile", "reddit"):    {{Text: longText, Sentiment: "negative"}},
			pairKey("verizon", "app_store"): {{Text: "solid app", Rating: 4, Sentiment: "positive"}},
		},
		errs: map[string]error{
			pairKey("att", "google_play"): errors.New("timeout"),
		},
	}
	op := NewCompetitiveComparisonOp(testDeps(r))

	out, err := op.Invoke(context.Background(), map[string]any{
		"search_query": "reliability",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "[COMPETITIVE COMPARISON - ALL BRANDS x ALL PLATFORMS]"))

	// Brand sections in catalog order.
	tm := strings.Index(out, "TMOBILE FEEDBACK")
	vz := strings.Index(out, "VERIZON FEEDBACK")
	att := strings.Index(out, "ATT FEEDBACK")
	require.True(t, tm >= 0 && vz >= 0 && att >= 0)
	assert.Less(t, tm, vz)
	assert.Less(t, vz, att)

	// Previews are truncated to 200 chars with an ellipsis marker.
	assert.Contains(t, out, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 201))

	assert.Contains(t, out, "1. [positive]")
	assert.Contains(t, out, "★★★★/5")
	assert.Contains(t, out, "Error retrieving Google Play Store: timeout")
}

func TestCompetitiveComparisonQueriesEveryPair(t *testing.T) {
	r := &fakeRetriever{}
	op := NewCompetitiveComparisonOp(testDeps(r))

	_, err := op.Invoke(context.Background(), map[string]any{"search_query": "pricing"})
	require.NoError(t, err)

	var want []string
	for _, b := range []string{"tmobile", "verizon", "att"} {
		for _, p := range []string{"reddit", "google_play", "app_store"} {
			want = append(want, fmt.Sprintf("%s/%s", b, p))
		}
	}
	assert.Equal(t, want, r.queries)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s":     "text",
		"n":     float64(7),
		"wrong": []any{"list"},
	}

	assert.Equal(t, "text", stringArg(args, "s", "d"))
	assert.Equal(t, "d", stringArg(args, "missing", "d"))
	assert.Equal(t, "d", stringArg(args, "n", "d"))
	assert.Equal(t, 7, intArg(args, "n", 3))
	assert.Equal(t, 3, intArg(args, "missing", 3))
	assert.Equal(t, 3, intArg(args, "wrong", 3))

	_, err := requireString(args, "missing")
	assert.Error(t, err)
}
