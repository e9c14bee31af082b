package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/session"
	"github.com/echolens/echolens/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// stagedCompleter answers the research tool loop with a fixed summary and
// later plain completions from a script keyed by call order.
type stagedCompleter struct {
	research    string
	completions []string
	failAt      int
	calls       int
	prompts     []string
}

func (s *stagedCompleter) Complete(_ context.Context, _, userPrompt string, _ ...llm.GenOption) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	if s.failAt > 0 && s.calls+1 >= s.failAt {
		return "", errors.New("provider unavailable")
	}
	out := s.completions[s.calls]
	s.calls++
	return out, nil
}

func (s *stagedCompleter) CompleteWithHistory(_ context.Context, _ []llms.MessageContent, _ []llms.Tool, _ ...llm.GenOption) (*llms.ContentChoice, error) {
	return &llms.ContentChoice{Content: s.research}, nil
}

func newTestReporter(c llm.Completer) *Reporter {
	logger := slog.New(slog.DiscardHandler)
	driver := session.NewDriver(c, tools.NewRegistry(), 5, nil, logger)
	return NewReporter(driver, c, config.DefaultCatalog(), nil, logger)
}

func TestGenerateReportStageSequencing(t *testing.T) {
	c := &stagedCompleter{
		research:    "RESEARCH-SUMMARY",
		completions: []string{"THE-OUTLINE", "THE-DRAFT", "THE-FINAL"},
	}
	r := newTestReporter(c)

	var seen []Stage
	run, err := r.GenerateReport(context.Background(), "analyze billing complaints", func(s Stage) {
		seen = append(seen, s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.ResearchSummary != "RESEARCH-SUMMARY" || run.Outline != "THE-OUTLINE" ||
		run.Draft != "THE-DRAFT" || run.FinalReport != "THE-FINAL" {
		t.Errorf("unexpected run artifacts: %+v", run)
	}

	if len(seen) != 4 || seen[0] != StageResearch || seen[1] != StageOutline ||
		seen[2] != StageDraft || seen[3] != StageEdit {
		t.Errorf("stages in wrong order: %v", seen)
	}

	// Each later stage consumes the earlier artifacts.
	if !strings.Contains(c.prompts[0], "analyze billing complaints") ||
		!strings.Contains(c.prompts[0], "RESEARCH-SUMMARY") {
		t.Error("outline prompt missing query or research summary")
	}
	if !strings.Contains(c.prompts[1], "RESEARCH-SUMMARY") ||
		!strings.Contains(c.prompts[1], "THE-OUTLINE") {
		t.Error("draft prompt missing research summary or outline")
	}
	if !strings.Contains(c.prompts[2], "THE-OUTLINE") ||
		!strings.Contains(c.prompts[2], "THE-DRAFT") {
		t.Error("edit prompt missing outline or draft")
	}
}

func TestGenerateReportStageFailureAborts(t *testing.T) {
	c := &stagedCompleter{
		research:    "RESEARCH-SUMMARY",
		completions: []string{"THE-OUTLINE"},
		failAt:      2,
	}
	r := newTestReporter(c)

	_, err := r.GenerateReport(context.Background(), "query", nil)
	if err == nil {
		t.Fatal("expected error from failing stage")
	}
	if !strings.Contains(err.Error(), "draft stage") {
		t.Errorf("error should name the failing stage, got %v", err)
	}
}

func TestResearchOnly(t *testing.T) {
	c := &stagedCompleter{research: "JUST-RESEARCH"}
	r := newTestReporter(c)

	out, err := r.Research(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "JUST-RESEARCH" {
		t.Errorf("got %q", out)
	}
	if c.calls != 0 {
		t.Errorf("research-only run should not hit later stages, got %d completions", c.calls)
	}
}

func TestResearchSystemPromptListsCatalogPlatforms(t *testing.T) {
	prompt := researchSystemPrompt(config.DefaultCatalog())

	for _, want := range []string{
		"Reddit Community Discussions",
		"Google Play Store Reviews (Android)",
		"Apple App Store Reviews (iOS)",
		"retrieve_brand_feedback",
		"retrieve_competitive_comparison",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("research system prompt missing %q", want)
		}
	}
}
