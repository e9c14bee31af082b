package models

// PipelineRun bundles the four stage outputs of one report generation.
// Ephemeral: persistence, if any, is the caller's concern.
type PipelineRun struct {
	ResearchSummary string `json:"research_summary"`
	Outline         string `json:"outline"`
	Draft           string `json:"draft"`
	FinalReport     string `json:"final_report"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of an interactive chat exchange. Hosts keep the
// running transcript and pass it back with each new question.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
