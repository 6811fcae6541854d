package respond

import "github.com/salescope/salescope/pkg/chart"

// Recommendation is an analysis direction suggested when the question was too
// vague to turn into SQL.
type Recommendation struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ExampleQuery string `json:"example_query"`
}

// QueryResponse is the structured result of a SQL generation call. Either
// SQLQuery is set or RecommendedAnalyses is non-empty.
type QueryResponse struct {
	SQLQuery string `json:"sql_query"`
	chart.Spec
	RecommendedAnalyses []Recommendation `json:"recommended_analyses,omitempty"`
}

// AnalysisResponse is the structured result of an analysis call: the textual
// insight plus the final chart recommendation.
type AnalysisResponse struct {
	AnalysisText string `json:"analysis_text"`
	chart.Spec
}

// PlanStep is one step of a deep-dive analysis plan.
type PlanStep struct {
	Purpose string `json:"purpose"`
	SQL     string `json:"sql"`
}

// ChartParams locates a chapter's chart data and axes. DataKey refers to an
// evidence key or "baseline".
type ChartParams struct {
	DataKey string      `json:"data_key"`
	XAxis   string      `json:"x_axis,omitempty"`
	YAxis   chart.YAxis `json:"y_axis,omitempty"`
	Title   string      `json:"title,omitempty"`
}

// Chapter is one themed section of a synthesized report.
type Chapter struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	ChartType   string       `json:"chart_type,omitempty"`
	ChartParams *ChartParams `json:"chart_params,omitempty"`
}

// Report is the synthesized deep-dive report.
type Report struct {
	Title           string    `json:"report_title"`
	Summary         string    `json:"executive_summary"`
	Chapters        []Chapter `json:"chapters"`
	Recommendations []string  `json:"recommendations"`
}

// EvidenceInput is one collected evidence entry handed to report synthesis.
// Markdown holds the rendered result table, or a failure note when the step's
// query could not be executed.
type EvidenceInput struct {
	Key      string
	Purpose  string
	Markdown string
}
