// Package pipeline chains the research, outline, writer, and editor stages
// into a full report generation run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/session"
)

// Stage identifies one pipeline stage for progress reporting.
type Stage string

const (
	StageResearch Stage = "research"
	StageOutline  Stage = "outline"
	StageDraft    Stage = "draft"
	StageEdit     Stage = "edit"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageResearch, StageOutline, StageDraft, StageEdit}

// ProgressFunc is called when a stage starts. May be nil.
type ProgressFunc func(stage Stage)

// Stage generation parameters. Research runs through the tool loop, the
// later stages are plain completions over the accumulated artifacts.
const (
	researchTemperature = 0.2
	researchMaxTokens   = 2048
	outlineTemperature  = 0.3
	outlineMaxTokens    = 1024
	draftTemperature    = 0.4
	draftMaxTokens      = 2048
	editTemperature     = 0.2
	editMaxTokens       = 2048
)

// Reporter runs the four-stage report pipeline.
type Reporter struct {
	driver    *session.Driver
	completer llm.Completer
	catalog   *config.Catalog
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewReporter creates a report pipeline. The collector may be nil.
func NewReporter(driver *session.Driver, completer llm.Completer, catalog *config.Catalog, collector *metrics.Collector, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		driver:    driver,
		completer: completer,
		catalog:   catalog,
		collector: collector,
		logger:    logger,
	}
}

// GenerateReport runs all four stages and returns every intermediate
// artifact. A stage failure aborts the run; partial artifacts are not
// returned because later stages build on earlier ones.
func (r *Reporter) GenerateReport(ctx context.Context, userQuery string, progress ProgressFunc) (*models.PipelineRun, error) {
	research, err := r.runStage(ctx, StageResearch, progress, func(ctx context.Context) (string, error) {
		return r.driver.Run(ctx, researchSystemPrompt(r.catalog), researchUserPrompt(userQuery),
			llm.WithTemperature(researchTemperature), llm.WithMaxTokens(researchMaxTokens))
	})
	if err != nil {
		return nil, fmt.Errorf("research stage: %w", err)
	}

	outline, err := r.runStage(ctx, StageOutline, progress, func(ctx context.Context) (string, error) {
		return r.completer.Complete(ctx, outlineSystemPrompt, outlineUserPrompt(userQuery, research),
			llm.WithTemperature(outlineTemperature), llm.WithMaxTokens(outlineMaxTokens))
	})
	if err != nil {
		return nil, fmt.Errorf("outline stage: %w", err)
	}

	draft, err := r.runStage(ctx, StageDraft, progress, func(ctx context.Context) (string, error) {
		return r.completer.Complete(ctx, writerSystemPrompt, writerUserPrompt(research, outline),
			llm.WithTemperature(draftTemperature), llm.WithMaxTokens(draftMaxTokens))
	})
	if err != nil {
		return nil, fmt.Errorf("draft stage: %w", err)
	}

	final, err := r.runStage(ctx, StageEdit, progress, func(ctx context.Context) (string, error) {
		return r.completer.Complete(ctx, editorSystemPrompt, editorUserPrompt(research, outline, draft),
			llm.WithTemperature(editTemperature), llm.WithMaxTokens(editMaxTokens))
	})
	if err != nil {
		return nil, fmt.Errorf("edit stage: %w", err)
	}

	return &models.PipelineRun{
		ResearchSummary: research,
		Outline:         outline,
		Draft:           draft,
		FinalReport:     final,
	}, nil
}

// Research runs only the research stage, for callers that want the raw
// multi-platform summary without a full report.
func (r *Reporter) Research(ctx context.Context, userQuery string) (string, error) {
	return r.runStage(ctx, StageResearch, nil, func(ctx context.Context) (string, error) {
		return r.driver.Run(ctx, researchSystemPrompt(r.catalog), researchUserPrompt(userQuery),
			llm.WithTemperature(researchTemperature), llm.WithMaxTokens(researchMaxTokens))
	})
}

func (r *Reporter) runStage(ctx context.Context, stage Stage, progress ProgressFunc, fn func(ctx context.Context) (string, error)) (string, error) {
	if progress != nil {
		progress(stage)
	}

	start := time.Now()
	out, err := fn(ctx)
	duration := time.Since(start)

	if r.collector != nil {
		r.collector.RecordTiming(metrics.PipelineStageOp(string(stage)), duration)
	}
	if err != nil {
		r.logger.Error("pipeline stage failed", "stage", stage, "duration_ms", duration.Milliseconds(), "error", err)
		return "", err
	}

	r.logger.Info("pipeline stage complete", "stage", stage, "duration_ms", duration.Milliseconds(), "output_len", len(out))
	return out, nil
}
