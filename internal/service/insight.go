// Package service wires retrieval, session, and pipeline into the
// user-facing operations: questions, reports, direct answers, and ingestion.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/pipeline"
	"github.com/echolens/echolens/internal/session"
	"github.com/echolens/echolens/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// directAnswerTopK is the default per-brand retrieval depth for the direct
// and chat paths.
const directAnswerTopK = 5

// Streamer is the optional streaming capability. *llm.Model satisfies it.
type Streamer interface {
	CompleteWithHistoryStream(ctx context.Context, messages []llms.MessageContent, fn func(chunk []byte) error, opts ...llm.GenOption) (string, error)
}

// InsightService answers questions over the feedback corpus.
type InsightService struct {
	driver    *session.Driver
	reporter  *pipeline.Reporter
	retriever tools.Retriever
	completer llm.Completer
	catalog   *config.Catalog
	logger    *slog.Logger
}

// NewInsightService creates the insight service with explicit dependencies.
func NewInsightService(driver *session.Driver, reporter *pipeline.Reporter, retriever tools.Retriever, completer llm.Completer, catalog *config.Catalog, logger *slog.Logger) *InsightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightService{
		driver:    driver,
		reporter:  reporter,
		retriever: retriever,
		completer: completer,
		catalog:   catalog,
		logger:    logger,
	}
}

// answerSystemPrompt steers the tool loop toward full multi-platform
// retrieval before the model draws conclusions.
func answerSystemPrompt() string {
	return "You are an intelligent Research Agent with access to UNIFIED brand indexes.\n" +
		"Each index contains feedback from community discussions and app store reviews.\n\n" +
		"CRITICAL RULES FOR COMPREHENSIVE ANALYSIS:\n" +
		"1. ALWAYS use 'retrieve_brand_feedback' for single-brand analysis - it searches ALL platforms\n" +
		"2. ALWAYS use 'retrieve_competitive_comparison' for multi-brand analysis - it covers everything\n" +
		"3. NEVER rely on a single platform - always gather data from every platform\n" +
		"4. When analyzing, EXPLICITLY mention findings from each platform separately\n" +
		"5. Identify patterns that appear across multiple platforms vs platform-specific issues\n\n" +
		"AVAILABLE TOOLS:\n" +
		"- retrieve_brand_feedback: Get ALL platform feedback for one brand (USE THIS FIRST)\n" +
		"- retrieve_platform_feedback: Get specific platform data (use for platform deep-dives)\n" +
		"- retrieve_competitive_comparison: Compare ALL brands across ALL platforms (MANDATORY for comparisons)\n\n" +
		"RESPONSE FORMAT:\n" +
		"After retrieval, structure your analysis as:\n" +
		"1. OVERVIEW: Key findings across all platforms\n" +
		"2. PER-PLATFORM INSIGHTS: What each platform reveals\n" +
		"3. CROSS-PLATFORM PATTERNS: Issues appearing everywhere\n" +
		"4. PLATFORM-SPECIFIC ISSUES: Unique to one platform\n" +
		"5. RECOMMENDATIONS: Actionable items prioritized by impact\n\n" +
		"MANDATE: You MUST retrieve data from ALL platforms before drawing conclusions."
}

// AnswerQuestion runs the agentic tool loop over the user's question.
func (s *InsightService) AnswerQuestion(ctx context.Context, question string) (string, error) {
	return s.driver.Run(ctx, answerSystemPrompt(), question)
}

// GenerateReport runs the full four-stage report pipeline.
func (s *InsightService) GenerateReport(ctx context.Context, question string, progress pipeline.ProgressFunc) (*models.PipelineRun, error) {
	return s.reporter.GenerateReport(ctx, question, progress)
}

// Research runs only the research stage.
func (s *InsightService) Research(ctx context.Context, question string) (string, error) {
	return s.reporter.Research(ctx, question)
}

const directSystemPrompt = "You are an assistant analyzing multi-platform user feedback " +
	"(community discussions, app reviews). " +
	"Use the retrieved context to answer the user's question concisely and accurately. " +
	"If evidence is weak or missing, clearly state limitations."

// buildDirectContext retrieves per-brand context blocks for the direct path.
// Failed brands get an inline error note instead of sinking the answer.
func (s *InsightService) buildDirectContext(ctx context.Context, question string, topK int) string {
	var sections []string
	for _, brand := range s.catalog.Brands {
		hits, err := s.retriever.Query(ctx, brand.Key, "", question, topK)
		if err != nil {
			sections = append(sections, fmt.Sprintf("[%s] Retrieval error: %v", brand.Key, err))
			continue
		}

		var block strings.Builder
		fmt.Fprintf(&block, "[%s]\n", brand.DisplayName)
		if len(hits) == 0 {
			block.WriteString("No relevant posts found.")
		} else {
			for i, hit := range hits {
				if i > 0 {
					block.WriteString("\n")
				}
				fmt.Fprintf(&block, "%d. [%s] %s", i+1, strings.ToUpper(hit.Platform), hit.Text)
			}
		}
		sections = append(sections, block.String())
	}

	if len(sections) == 0 {
		return "No context retrieved."
	}
	return strings.Join(sections, "\n\n")
}

func directUserPrompt(question, context string) string {
	return fmt.Sprintf("User Question:\n%s\n\nRetrieved Context:\n%s\n\nProvide a synthesized answer.", question, context)
}

// DirectAnswer retrieves topK posts per brand and synthesizes one answer
// without the tool loop. topK <= 0 uses the default depth. It never returns
// an error: failures come back as an "Error generating response" string so
// chat surfaces always have something to show.
func (s *InsightService) DirectAnswer(ctx context.Context, question string, topK int) string {
	if topK <= 0 {
		topK = directAnswerTopK
	}
	combined := s.buildDirectContext(ctx, question, topK)

	answer, err := s.completer.Complete(ctx, directSystemPrompt, directUserPrompt(question, combined))
	if err != nil {
		s.logger.Error("direct answer failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
	return answer
}

// chatMessages assembles the transcript for one chat turn: system prompt,
// prior turns with their roles, then the new question with fresh retrieval
// context.
func chatMessages(history []models.ChatMessage, question, context string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, directSystemPrompt))
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, directUserPrompt(question, context)))
}

// ChatTurn answers one turn of a multi-turn chat. Retrieval context is built
// for the new question only; earlier turns ride along as conversation
// history. Like DirectAnswer it never returns an error.
func (s *InsightService) ChatTurn(ctx context.Context, history []models.ChatMessage, question string, topK int) string {
	if topK <= 0 {
		topK = directAnswerTopK
	}
	combined := s.buildDirectContext(ctx, question, topK)

	choice, err := s.completer.CompleteWithHistory(ctx, chatMessages(history, question, combined), nil)
	if err != nil {
		s.logger.Error("chat turn failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
	return choice.Content
}

// ChatTurnStream is ChatTurn with chunk streaming. The full answer is
// returned after the stream completes.
func (s *InsightService) ChatTurnStream(ctx context.Context, history []models.ChatMessage, question string, topK int, streamer Streamer, fn func(chunk []byte) error) string {
	if topK <= 0 {
		topK = directAnswerTopK
	}
	combined := s.buildDirectContext(ctx, question, topK)

	answer, err := streamer.CompleteWithHistoryStream(ctx, chatMessages(history, question, combined), fn)
	if err != nil {
		s.logger.Error("chat turn stream failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
	return answer
}
