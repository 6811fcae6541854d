package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/table"
)

// markdownBudget bounds the serialized result data sent for analysis.
const markdownBudget = 4000

// AnalyzeResult asks the model to interpret a query result in the context of
// the original question and produce the final chart recommendation.
func (r *Responder) AnalyzeResult(ctx context.Context, tbl *table.Table, question, framework string) (*AnalysisResponse, error) {
	md := table.TruncateMarkdown(tbl.Markdown(), markdownBudget)

	var b strings.Builder
	fmt.Fprintf(&b, "# User Question\n\n%s\n\n", question)
	if hint := r.cfg.Prompts.Framework(framework); hint != "" {
		fmt.Fprintf(&b, "# Analysis Framework\n\n%s\n\n", hint)
	}
	fmt.Fprintf(&b, "# Analysis Guidance\n\n%s\n\n", r.cfg.Prompts.Guidance)
	fmt.Fprintf(&b, "# Data Caveats\n\n%s\n\n", r.cfg.Prompts.Caveats)
	fmt.Fprintf(&b, "# Queried Data\n\n%s\n\n", md)
	b.WriteString(`# Output Format

Return exactly one JSON object with these top-level keys:
"analysis_text", "chart_type", "x_axis", "y_axis", "category_column",
"value_column", "title", "explanation".
Do not nest chart fields inside a "chart_suggestion" object.`)

	raw, err := r.complete(ctx, "analyze", r.cfg.Prompts.Analyze, []llm.Message{llm.UserMessage(b.String())})
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		r.cfg.Logger.Warn("respond: analyze response not decodable", "error", err)
		return nil, err
	}
	flattenChartWrapper(obj)

	for _, key := range []string{"analysis_text", "chart_type", "title", "explanation"} {
		if _, ok := obj[key]; !ok {
			return nil, fmt.Errorf("%w: missing required key %q", ErrIncompleteResponse, key)
		}
	}

	var resp AnalysisResponse
	if err := remarshal(obj, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
