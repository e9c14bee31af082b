package tools

import (
	"context"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/retrieval"
)

// Retriever is the retrieval surface the operations need. QuerySafe isolates
// failures so one bad platform cannot sink a multi-platform fan-out.
type Retriever interface {
	Query(ctx context.Context, brandKey, platformKey, searchQuery string, topK int) ([]models.Hit, error)
	QuerySafe(ctx context.Context, brandKey, platformKey, searchQuery string, topK int) []models.Hit
}

var _ Retriever = (*retrieval.Gateway)(nil)

// Dependencies bundles what the operations need to run.
type Dependencies struct {
	Retriever Retriever
	Catalog   *config.Catalog
}

// RegisterAll builds the standard registry with all three retrieval
// operations.
func RegisterAll(deps *Dependencies) *Registry {
	r := NewRegistry()
	r.Register(NewBrandFeedbackOp(deps))
	r.Register(NewPlatformFeedbackOp(deps))
	r.Register(NewCompetitiveComparisonOp(deps))
	return r
}
