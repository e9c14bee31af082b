// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"github.com/echolens/echolens/internal/models"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDimension  = 384
	testCollection = "feedback_testbrand"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	// Start SurrealDB container
	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	// Get container host and port
	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	// Connect to test database
	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx, []string{testCollection}, testDimension); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// seededEmbedding returns a deterministic unit-length vector. Different seeds
// give different directions, so cosine ranking is stable across runs.
func seededEmbedding(seed int) []float32 {
	embedding := make([]float32, testDimension)
	var norm float64
	for i := range embedding {
		v := math.Sin(float64(seed*31 + i))
		embedding[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range embedding {
		embedding[i] /= float32(norm)
	}
	return embedding
}

// wipeTestCollection resets state between tests.
func wipeTestCollection(t *testing.T) {
	t.Helper()
	if err := testDB.WipeCollections(context.Background(), []string{testCollection}); err != nil {
		t.Fatalf("Failed to wipe test collection: %v", err)
	}
}

func TestUpsertFeedback(t *testing.T) {
	ctx := context.Background()
	wipeTestCollection(t)

	doc := models.FeedbackDocument{
		Text:         "Coverage dropped after the latest update",
		Brand:        "testbrand",
		Platform:     "reddit",
		SourcePostID: "abc123",
		Sentiment:    "negative",
		Category:     "network_connectivity",
		Embedding:    seededEmbedding(1),
	}

	saved, err := testDB.UpsertFeedback(ctx, testCollection, doc)
	if err != nil {
		t.Fatalf("UpsertFeedback failed: %v", err)
	}
	if saved.Text != doc.Text {
		t.Errorf("Expected text %q, got %q", doc.Text, saved.Text)
	}
	if saved.Platform != "reddit" {
		t.Errorf("Expected platform 'reddit', got %q", saved.Platform)
	}
	if saved.ID == nil {
		t.Error("Expected record id to be set")
	}
}

func TestUpsertFeedbackDeduplicates(t *testing.T) {
	ctx := context.Background()
	wipeTestCollection(t)

	doc := models.FeedbackDocument{
		Text:         "Original review text",
		Brand:        "testbrand",
		Platform:     "google_play",
		SourcePostID: "review-42",
		Rating:       2,
		Embedding:    seededEmbedding(2),
	}

	if _, err := testDB.UpsertFeedback(ctx, testCollection, doc); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// Same (platform, source_post_id) pair must update in place
	doc.Text = "Edited review text"
	doc.Rating = 4
	updated, err := testDB.UpsertFeedback(ctx, testCollection, doc)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if updated.Text != "Edited review text" {
		t.Errorf("Expected updated text, got %q", updated.Text)
	}
	if updated.Rating != 4 {
		t.Errorf("Expected updated rating 4, got %d", updated.Rating)
	}

	total, err := testDB.TotalCount(ctx, testCollection)
	if err != nil {
		t.Fatalf("TotalCount failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 document after re-ingest, got %d", total)
	}

	// Same source id on a different platform is a distinct document
	doc.Platform = "app_store"
	if _, err := testDB.UpsertFeedback(ctx, testCollection, doc); err != nil {
		t.Fatalf("Cross-platform upsert failed: %v", err)
	}
	total, err = testDB.TotalCount(ctx, testCollection)
	if err != nil {
		t.Fatalf("TotalCount failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 documents across platforms, got %d", total)
	}
}

func TestSearchFeedback(t *testing.T) {
	ctx := context.Background()
	wipeTestCollection(t)

	docs := []models.FeedbackDocument{
		{Text: "Signal is great downtown", Platform: "reddit", SourcePostID: "r1", EngagementScore: 10, Embedding: seededEmbedding(10)},
		{Text: "App crashes on login", Platform: "google_play", SourcePostID: "g1", Rating: 1, Embedding: seededEmbedding(11)},
		{Text: "Billing page is confusing", Platform: "app_store", SourcePostID: "a1", Rating: 3, Embedding: seededEmbedding(12)},
	}
	for _, doc := range docs {
		doc.Brand = "testbrand"
		if _, err := testDB.UpsertFeedback(ctx, testCollection, doc); err != nil {
			t.Fatalf("Failed to seed document %s: %v", doc.SourcePostID, err)
		}
	}

	// Query with the exact embedding of the reddit post: it must rank first
	// with similarity near 1
	hits, err := testDB.SearchFeedback(ctx, testCollection, seededEmbedding(10), 3, "")
	if err != nil {
		t.Fatalf("SearchFeedback failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Expected at least one hit")
	}
	if hits[0].Text != "Signal is great downtown" {
		t.Errorf("Expected the matching document first, got %q", hits[0].Text)
	}
	if hits[0].Similarity < 0.99 {
		t.Errorf("Expected similarity near 1 for exact embedding, got %f", hits[0].Similarity)
	}
	if hits[0].EngagementScore != 10 {
		t.Errorf("Expected engagement score 10, got %d", hits[0].EngagementScore)
	}

	// Platform filter restricts results
	hits, err = testDB.SearchFeedback(ctx, testCollection, seededEmbedding(10), 3, "google_play")
	if err != nil {
		t.Fatalf("SearchFeedback with platform filter failed: %v", err)
	}
	for _, hit := range hits {
		if hit.Platform != "google_play" {
			t.Errorf("Platform filter leaked %q document", hit.Platform)
		}
	}
}

func TestCountFeedback(t *testing.T) {
	ctx := context.Background()
	wipeTestCollection(t)

	docs := []models.FeedbackDocument{
		{Text: "post one", Platform: "reddit", SourcePostID: "c1", Embedding: seededEmbedding(20)},
		{Text: "post two", Platform: "reddit", SourcePostID: "c2", Embedding: seededEmbedding(21)},
		{Text: "review one", Platform: "google_play", SourcePostID: "c3", Embedding: seededEmbedding(22)},
	}
	for _, doc := range docs {
		doc.Brand = "testbrand"
		if _, err := testDB.UpsertFeedback(ctx, testCollection, doc); err != nil {
			t.Fatalf("Failed to seed document %s: %v", doc.SourcePostID, err)
		}
	}

	counts, err := testDB.CountFeedback(ctx, testCollection)
	if err != nil {
		t.Fatalf("CountFeedback failed: %v", err)
	}

	byPlatform := make(map[string]int)
	for _, c := range counts {
		byPlatform[c.Platform] = c.Count
	}
	if byPlatform["reddit"] != 2 {
		t.Errorf("Expected 2 reddit documents, got %d", byPlatform["reddit"])
	}
	if byPlatform["google_play"] != 1 {
		t.Errorf("Expected 1 google_play document, got %d", byPlatform["google_play"])
	}

	total, err := testDB.TotalCount(ctx, testCollection)
	if err != nil {
		t.Fatalf("TotalCount failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
}

func TestWipeCollections(t *testing.T) {
	ctx := context.Background()
	wipeTestCollection(t)

	doc := models.FeedbackDocument{
		Text:         "to be wiped",
		Brand:        "testbrand",
		Platform:     "reddit",
		SourcePostID: "w1",
		Embedding:    seededEmbedding(30),
	}
	if _, err := testDB.UpsertFeedback(ctx, testCollection, doc); err != nil {
		t.Fatalf("Failed to seed document: %v", err)
	}

	if err := testDB.WipeCollections(ctx, []string{testCollection}); err != nil {
		t.Fatalf("WipeCollections failed: %v", err)
	}

	total, err := testDB.TotalCount(ctx, testCollection)
	if err != nil {
		t.Fatalf("TotalCount after wipe failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected 0 documents after wipe, got %d", total)
	}
}
