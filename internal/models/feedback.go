// Package models defines the shared data types for feedback documents and
// retrieval results.
package models

import (
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// FeedbackDocument is one ingested unit of customer feedback. The unified
// schema carries the fields of every platform; platform-specific fields are
// zero-valued elsewhere.
type FeedbackDocument struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Text      string                  `json:"text"`
	Embedding []float32               `json:"embedding,omitempty"`

	Brand        string `json:"brand"`
	Platform     string `json:"platform"`
	SourcePostID string `json:"source_post_id"`

	Sentiment   string `json:"sentiment,omitempty"`
	Category    string `json:"category,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`

	// App store reviews only
	Rating        int    `json:"rating,omitempty"`
	ReplyContent  string `json:"reply_content,omitempty"`
	ReviewVersion string `json:"review_version,omitempty"`
	AppName       string `json:"app_name,omitempty"`
	ThumbsUp      int    `json:"thumbs_up,omitempty"`

	// Community discussions only
	EngagementScore int     `json:"engagement_score,omitempty"`
	Subreddit       string  `json:"subreddit,omitempty"`
	NumComments     int     `json:"num_comments,omitempty"`
	UpvoteRatio     float64 `json:"upvote_ratio,omitempty"`
	Flair           string  `json:"flair,omitempty"`
	TopComment      string  `json:"top_comment,omitempty"`

	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
}

// DedupKey derives the deterministic record id for a document. Documents with
// the same (platform, source post) pair map to the same record, so a
// re-ingest updates in place instead of inserting a duplicate.
func DedupKey(platform, sourcePostID string) string {
	return platform + ":" + sourcePostID
}

// Hit is one ranked retrieval result. Ephemeral: consumed immediately to
// build a formatted context block, never persisted.
type Hit struct {
	ID              *surrealmodels.RecordID `json:"id,omitempty"`
	Text            string                  `json:"text"`
	Platform        string                  `json:"platform"`
	SourcePostID    string                  `json:"source_post_id"`
	Sentiment       string                  `json:"sentiment,omitempty"`
	Category        string                  `json:"category,omitempty"`
	Rating          int                     `json:"rating,omitempty"`
	EngagementScore int                     `json:"engagement_score,omitempty"`
	CreatedDate     string                  `json:"created_date,omitempty"`
	Author          string                  `json:"author,omitempty"`
	Title           string                  `json:"title,omitempty"`
	URL             string                  `json:"url,omitempty"`
	Similarity      float64                 `json:"similarity,omitempty"`
}

// PlatformCount is a per-platform document count for one brand collection.
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}
