package models

// StageType identifies one unit of pipeline work.
type StageType string

const (
	StageSearch  StageType = "search"
	StageRewrite StageType = "rewrite"
	StageAnswer  StageType = "answer"
)

// StageResult is the trace record for one executed stage. The trace is
// returned for UI transparency only and never drives control flow.
type StageResult struct {
	Stage        StageType      `json:"stage"`
	InputPreview string         `json:"input_preview"`
	Output       string         `json:"output"`
	Meta         map[string]any `json:"meta,omitempty"`
}
