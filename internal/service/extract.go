package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/echolens/echolens/internal/llm"
)

const (
	extractTemperature = 0.2
	extractMaxTokens   = 2048
)

// ReportFindings is the structured form of a research summary: the recurring
// themes, concrete pain points, and suggested actions the model identified.
type ReportFindings struct {
	Themes          []string `json:"themes"`
	PainPoints      []string `json:"pain_points"`
	Recommendations []string `json:"recommendations"`
}

const findingsSchema = `{
  "themes": ["string"],
  "pain_points": ["string"],
  "recommendations": ["string"]
}`

const findingsPrompt = "Extract the recurring feedback themes, the concrete pain points users report, " +
	"and the recommendations the research supports. Keep each entry short and specific."

// ExtractFindings runs the research stage output through structured
// extraction and returns the parsed findings.
func (s *InsightService) ExtractFindings(ctx context.Context, researchSummary string) (*ReportFindings, error) {
	var findings ReportFindings
	if err := s.ExtractJSON(ctx, researchSummary, findingsSchema, findingsPrompt, &findings); err != nil {
		return nil, fmt.Errorf("extract findings: %w", err)
	}
	return &findings, nil
}

// ExtractJSON asks the model to pull structured data out of a research
// summary and parses the result into dst. Models tend to wrap JSON in
// markdown fences or prose, so the response goes through lenient extraction
// before parsing.
func (s *InsightService) ExtractJSON(ctx context.Context, researchSummary, jsonSchema, extractionPrompt string, dst any) error {
	systemPrompt := "You are a Data Extraction Agent. Your job is to extract structured data from research summaries.\n\n" +
		fmt.Sprintf("Expected JSON structure:\n%s\n\n", jsonSchema) +
		"IMPORTANT: Return ONLY valid JSON. No markdown, no code blocks, no explanations."

	userPrompt := fmt.Sprintf("\n%s\n\nResearch Summary:\n%s\n\nExtract the data and return it as valid JSON matching the schema above.\n",
		extractionPrompt, researchSummary)

	response, err := s.completer.Complete(ctx, systemPrompt, userPrompt,
		llm.WithTemperature(extractTemperature), llm.WithMaxTokens(extractMaxTokens))
	if err != nil {
		return fmt.Errorf("extraction completion: %w", err)
	}

	raw, err := extractJSONObject(response)
	if err != nil {
		s.logger.Warn("could not extract JSON from response", "preview", preview(response, 200))
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("parse extracted JSON: %w", err)
	}
	return nil
}

// extractJSONObject finds the first complete JSON object in a model
// response. Strips markdown fences, then balances braces; falls back to the
// first-{ to last-} span.
func extractJSONObject(response string) (string, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	start := strings.IndexByte(response, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := response[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, nil
				}
				// Balanced but invalid, try the widest span below.
				i = len(response)
			}
		}
	}

	end := strings.LastIndexByte(response, '}')
	if end > start {
		candidate := response[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no valid JSON object in response")
}

func preview(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
