package respond

import (
	"context"
	"fmt"

	"github.com/salescope/salescope/pkg/llm"
)

// GenerateQuery asks the model to translate the latest user turn in history
// into a SQL query with a preliminary chart recommendation. When a framework
// hint is given it is injected as a synthetic user turn ahead of the history
// so the model treats it as standing context.
func (r *Responder) GenerateQuery(ctx context.Context, history []llm.Message, framework string) (*QueryResponse, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	if hint := r.cfg.Prompts.Framework(framework); hint != "" {
		msgs = append(msgs, llm.UserMessage("Analysis framework for this session:\n\n"+hint))
	}
	msgs = append(msgs, history...)

	raw, err := r.complete(ctx, "sqlgen", r.cfg.Prompts.SQLGen, msgs)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(raw)
	if err != nil {
		r.cfg.Logger.Warn("respond: sqlgen response not decodable", "error", err)
		return nil, err
	}

	var resp QueryResponse
	if err := remarshal(obj, &resp); err != nil {
		return nil, err
	}

	if resp.SQLQuery == "" && len(resp.RecommendedAnalyses) == 0 {
		return nil, fmt.Errorf("%w: response has neither sql_query nor recommended_analyses", ErrIncompleteResponse)
	}

	resp.SQLQuery = stripSQLFences(resp.SQLQuery)
	return &resp, nil
}
