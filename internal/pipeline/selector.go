package pipeline

import (
	"fmt"

	"chatpipe/internal/models"
	"chatpipe/internal/provider"
)

// Workflow names a fixed stage sequence selected by the caller.
type Workflow string

const (
	WorkflowSingle            Workflow = "single"
	WorkflowRewriteAnswer     Workflow = "chatgpt-to-gemini"
	WorkflowTavilyAnswer      Workflow = "tavily-to-gemini"
	WorkflowPerplexityAnswer  Workflow = "perplexity-to-gemini"
	WorkflowSearchRewriteFull Workflow = "perplexity-chatgpt-gemini"
)

// Search backends selectable by workflow.
const (
	BackendTavily     = "tavily"
	BackendPerplexity = "perplexity"
)

var stageTable = map[Workflow][]models.StageType{
	WorkflowSingle:            {models.StageAnswer},
	WorkflowRewriteAnswer:     {models.StageRewrite, models.StageAnswer},
	WorkflowTavilyAnswer:      {models.StageSearch, models.StageAnswer},
	WorkflowPerplexityAnswer:  {models.StageSearch, models.StageAnswer},
	WorkflowSearchRewriteFull: {models.StageSearch, models.StageRewrite, models.StageAnswer},
}

var workflowLabels = map[Workflow]string{
	WorkflowSingle:            "Trả lời trực tiếp (Gemini)",
	WorkflowRewriteAnswer:     "Tối ưu câu lệnh (ChatGPT) → Gemini",
	WorkflowTavilyAnswer:      "Tìm kiếm (Tavily) → Gemini",
	WorkflowPerplexityAnswer:  "Tìm kiếm (Perplexity) → Gemini",
	WorkflowSearchRewriteFull: "Perplexity → ChatGPT → Gemini",
}

// workflowOrder keeps listings deterministic.
var workflowOrder = []Workflow{
	WorkflowSingle,
	WorkflowRewriteAnswer,
	WorkflowTavilyAnswer,
	WorkflowPerplexityAnswer,
	WorkflowSearchRewriteFull,
}

// StagesFor resolves a workflow id into its stage sequence. Unknown ids are
// the caller's fault.
func StagesFor(w Workflow) ([]models.StageType, error) {
	stages, ok := stageTable[w]
	if !ok {
		return nil, provider.NewError(provider.KindValidation, fmt.Sprintf("unknown workflow %q", w))
	}
	out := make([]models.StageType, len(stages))
	copy(out, stages)
	return out, nil
}

// SearchBackend names the search provider the workflow uses, or "" when the
// workflow has no search stage.
func (w Workflow) SearchBackend() string {
	switch w {
	case WorkflowTavilyAnswer:
		return BackendTavily
	case WorkflowPerplexityAnswer, WorkflowSearchRewriteFull:
		return BackendPerplexity
	default:
		return ""
	}
}

// WorkflowInfo is the listing entry for the front end's workflow selector.
type WorkflowInfo struct {
	ID     Workflow           `json:"id"`
	Label  string             `json:"label"`
	Stages []models.StageType `json:"stages"`
}

func Workflows() []WorkflowInfo {
	out := make([]WorkflowInfo, 0, len(workflowOrder))
	for _, w := range workflowOrder {
		stages, _ := StagesFor(w)
		out = append(out, WorkflowInfo{ID: w, Label: workflowLabels[w], Stages: stages})
	}
	return out
}
