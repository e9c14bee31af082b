package tools

import (
	"fmt"
	"strings"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/models"
)

const (
	platformDivider   = "============================================================"
	comparisonDivider = "------------------------------------------------------------"
	brandDivider      = "######################################################################"

	// comparisonPreviewLen bounds entry text in the cross-brand comparison
	// so the block stays within context limits.
	comparisonPreviewLen = 200
)

// starRating renders an integer rating as repeated star glyphs, e.g. "★★★★/5".
func starRating(rating int) string {
	return strings.Repeat("★", rating) + "/5"
}

// writeFeedbackEntry appends one numbered entry with its tags, rating or
// engagement score, and full text.
func writeFeedbackEntry(out *strings.Builder, n int, hit models.Hit, platform config.Platform) {
	category := hit.Category
	if category == "" {
		category = "general"
	}
	sentiment := hit.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}

	fmt.Fprintf(out, "\n%d. [%s] [%s]\n", n, category, sentiment)
	if platform.HasRating {
		if hit.Rating > 0 {
			fmt.Fprintf(out, "   Rating: %s\n", starRating(hit.Rating))
		}
	} else {
		fmt.Fprintf(out, "   Engagement Score: %d\n", hit.EngagementScore)
	}
	fmt.Fprintf(out, "   %s\n", hit.Text)
}

// writeComparisonEntry appends one numbered entry in the compact comparison
// shape with a truncated text preview.
func writeComparisonEntry(out *strings.Builder, n int, hit models.Hit, platform config.Platform) {
	sentiment := hit.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}

	fmt.Fprintf(out, "\n%d. [%s]\n", n, sentiment)
	if platform.HasRating && hit.Rating > 0 {
		fmt.Fprintf(out, "   %s\n", starRating(hit.Rating))
	}

	text := hit.Text
	if runes := []rune(text); len(runes) > comparisonPreviewLen {
		text = string(runes[:comparisonPreviewLen])
	}
	fmt.Fprintf(out, "   %s...\n", text)
}
