package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/salescope/salescope/pkg/llm"
)

// maxPlanSteps caps a deep-dive plan regardless of what the model returns.
const maxPlanSteps = 5

// PlanAnalysis asks the model for a multi-step analysis plan for the given
// question. baselineSummary is a markdown sample of the baseline data.
func (r *Responder) PlanAnalysis(ctx context.Context, question, baselineSummary string) ([]PlanStep, error) {
	system := strings.Replace(r.cfg.Prompts.Plan, "{{QUESTION}}", question, 1)
	system = strings.Replace(system, "{{DATA_SUMMARY}}", baselineSummary, 1)

	raw, err := r.complete(ctx, "plan", system, []llm.Message{
		llm.UserMessage("Produce the analysis plan JSON now."),
	})
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		r.cfg.Logger.Warn("respond: plan response not decodable", "error", err)
		return nil, err
	}

	var resp struct {
		Plan []PlanStep `json:"plan"`
	}
	if err := remarshal(obj, &resp); err != nil {
		return nil, err
	}
	if len(resp.Plan) == 0 {
		return nil, fmt.Errorf("%w: plan has no steps", ErrIncompleteResponse)
	}
	if len(resp.Plan) > maxPlanSteps {
		r.cfg.Logger.Warn("respond: plan truncated", "steps", len(resp.Plan), "max", maxPlanSteps)
		resp.Plan = resp.Plan[:maxPlanSteps]
	}
	for i := range resp.Plan {
		resp.Plan[i].SQL = stripSQLFences(resp.Plan[i].SQL)
	}
	return resp.Plan, nil
}
