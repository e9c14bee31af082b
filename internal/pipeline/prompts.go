package pipeline

import (
	"fmt"
	"strings"

	"github.com/echolens/echolens/internal/config"
)

// researchSystemPrompt instructs the research stage to gather data from
// every platform before summarizing. The platform list comes from the
// catalog so the prompt stays truthful as sources are added.
func researchSystemPrompt(catalog *config.Catalog) string {
	var platforms strings.Builder
	for _, p := range catalog.Platforms {
		fmt.Fprintf(&platforms, "- %s\n", p.LongName)
	}

	return "You are a Research Agent with access to UNIFIED brand indexes containing data from:\n" +
		platforms.String() + "\n" +
		"MANDATORY RESEARCH PROTOCOL:\n" +
		"1. You MUST use retrieval tools to gather data from ALL platforms\n" +
		"2. For single-brand analysis: Use 'retrieve_brand_feedback' (gets all platforms)\n" +
		"3. For competitive analysis: Use 'retrieve_competitive_comparison' (gets all brands across all platforms)\n" +
		"4. You may use 'retrieve_platform_feedback' for deep-dives, but ONLY after getting comprehensive data\n\n" +
		"YOUR RESEARCH SUMMARY MUST INCLUDE:\n" +
		"1. DATA SOURCES SECTION:\n" +
		"   - Explicitly list which platforms were searched\n" +
		"   - Note the volume of data from each platform\n" +
		"   - Mention any platforms with limited/no data\n\n" +
		"2. PLATFORM-BY-PLATFORM ANALYSIS:\n" +
		"   - Community findings: sentiment, recurring discussions, pain points\n" +
		"   - Store review findings: app ratings, common complaints per store\n\n" +
		"3. CROSS-PLATFORM PATTERNS:\n" +
		"   - Issues mentioned in community discussions AND in app reviews\n" +
		"   - Universal complaints vs platform-specific issues\n\n" +
		"4. STATISTICAL BREAKDOWN:\n" +
		"   - Sentiment distribution per platform\n" +
		"   - Category frequency per platform\n" +
		"   - Rating averages (for app stores)\n" +
		"   - Engagement metrics (community scores, review counts)\n\n" +
		"5. KEY THEMES WITH PLATFORM ATTRIBUTION:\n" +
		"   - For EACH major theme, specify which platforms it appears on\n\n" +
		"6. NOTABLE EXAMPLES FROM EACH PLATFORM:\n" +
		"   - Quote specific posts and reviews\n\n" +
		"CRITICAL: Your summary will be used by other agents. It must be:\n" +
		"- Comprehensive (covering ALL platforms)\n" +
		"- Structured (organized by platform)\n" +
		"- Factual (based only on retrieved data)\n" +
		"- Detailed (with specific examples and statistics)\n\n" +
		"DO NOT proceed without retrieving data from all available platforms."
}

func researchUserPrompt(userQuery string) string {
	return fmt.Sprintf("RESEARCH REQUEST: %s\n\n", userQuery) +
		"MANDATORY INSTRUCTIONS:\n" +
		"1. Retrieve feedback from ALL platforms\n" +
		"2. If analyzing multiple brands, retrieve from ALL brands\n" +
		"3. Gather at least 10 results per platform for statistical significance\n" +
		"4. Create a comprehensive research summary following the required structure\n\n" +
		"Begin your research now. Use the retrieval tools to gather comprehensive multi-platform data."
}

const outlineSystemPrompt = "You are an Outline Agent. Your job is to create a logical, " +
	"well-structured outline for a service improvement report.\n\n" +
	"The outline should be detailed, with clear sections and subsections. " +
	"It should flow logically from problem identification to solutions.\n\n" +
	"If the research includes data from multiple platforms, " +
	"consider organizing findings by platform where appropriate."

func outlineUserPrompt(userQuery, researchSummary string) string {
	return fmt.Sprintf(`
# Original Query:
%s

# Research Summary:
%s

# Task:
Based on the research summary above, create a detailed, numbered outline for a
comprehensive service improvement report. The outline should include:

1. Executive Summary section
2. Data Sources section (mention which platforms were analyzed)
3. Problem Analysis section (with subsections for each major issue)
4. Platform-Specific Insights (if applicable - e.g., App Issues vs Service Issues)
5. Recommendations section (with specific, actionable suggestions)
6. Implementation Priority section
7. Conclusion section

Make the outline specific and detailed, with clear subsection headings.
Format it as a numbered list with proper indentation for subsections.
`, userQuery, researchSummary)
}

const writerSystemPrompt = "You are a professional Report Writer. Your job is to expand the " +
	"provided outline into a coherent, well-written draft.\n\n" +
	"CRITICAL RULES:\n" +
	"1. You MUST use the Research Summary as your ONLY source of facts\n" +
	"2. You MUST follow the outline structure exactly\n" +
	"3. Write in a professional, clear, and actionable tone\n" +
	"4. Do not invent facts or information not in the research summary\n" +
	"5. Make recommendations specific and implementable\n" +
	"6. When citing feedback, mention the source platform if relevant\n" +
	"7. Use specific examples from the research summary to support your points"

func writerUserPrompt(researchSummary, outline string) string {
	return fmt.Sprintf(`
# Research Summary (Your Source of Facts):
%s

# Outline to Follow:
%s

# Task:
Write the full report draft now. Expand each section of the outline into detailed,
well-written content. Use the research summary for all facts and data. Follow the
outline structure exactly. Make sure recommendations are specific and actionable.

When discussing user feedback, cite specific examples and mention which platform
they came from when relevant.
`, researchSummary, outline)
}

const editorSystemPrompt = "You are an Editor Agent (The Critic). Your job is to review the draft " +
	"for factual accuracy, structural compliance, and overall quality.\n\n" +
	"Your responsibilities:\n" +
	"1. Verify all facts against the research summary\n" +
	"2. Ensure the draft follows the outline structure\n" +
	"3. Check for clarity, coherence, and professional tone\n" +
	"4. Verify that platform sources are correctly attributed\n" +
	"5. Suggest improvements while maintaining accuracy\n" +
	"6. Remove any information not supported by the research summary\n" +
	"7. Ensure recommendations are actionable and specific\n\n" +
	"Output the final, polished report."

func editorUserPrompt(researchSummary, outline, draft string) string {
	return fmt.Sprintf(`
# Research Summary (Factual Reference):
%s

# Original Outline (Structure Reference):
%s

# Draft to Review:
%s

# Task:
Review this draft carefully. Check for:
1. Factual accuracy (compare against research summary)
2. Structural compliance (does it follow the outline?)
3. Clarity and professionalism
4. Proper attribution of sources
5. Actionability of recommendations

Output the final, polished report with any necessary corrections and improvements.
Do not add new facts not in the research summary.
Ensure all platform attributions are accurate.
`, researchSummary, outline, draft)
}
