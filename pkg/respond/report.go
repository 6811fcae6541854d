package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/table"
)

// evidenceBudget bounds the serialized evidence block sent for synthesis.
const evidenceBudget = 8000

// SynthesizeReport asks the model to write the final report from the collected
// evidence. columns lists the baseline table columns the report may reference.
func (r *Responder) SynthesizeReport(ctx context.Context, question string, evidence []EvidenceInput, columns []string) (*Report, error) {
	system := strings.Replace(r.cfg.Prompts.Synthesize, "{{QUESTION}}", question, 1)
	system = strings.Replace(system, "{{EVIDENCE}}", serializeEvidence(evidence), 1)
	system = strings.Replace(system, "{{COLUMNS}}", strings.Join(columns, ", "), 1)

	raw, err := r.complete(ctx, "synthesize", system, []llm.Message{
		llm.UserMessage("Write the report JSON now."),
	})
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		r.cfg.Logger.Warn("respond: synthesize response not decodable", "error", err)
		return nil, err
	}

	var report Report
	if err := remarshal(obj, &report); err != nil {
		return nil, err
	}
	if report.Title == "" && len(report.Chapters) == 0 {
		return nil, fmt.Errorf("%w: report has no title and no chapters", ErrIncompleteResponse)
	}
	return &report, nil
}

// serializeEvidence renders the evidence entries as a JSON object keyed by
// evidence key, with each entry's data trimmed to fit the overall budget.
func serializeEvidence(evidence []EvidenceInput) string {
	if len(evidence) == 0 {
		return "{}"
	}

	perEntry := evidenceBudget / len(evidence)
	if perEntry < 500 {
		perEntry = 500
	}

	entries := make(map[string]map[string]string, len(evidence))
	for _, ev := range evidence {
		entries[ev.Key] = map[string]string{
			"purpose": ev.Purpose,
			"data":    table.TruncateMarkdown(ev.Markdown, perEntry),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
