// Package pipeline runs a single conversational question through SQL
// generation, execution, and result analysis.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/salescope/salescope/pkg/chart"
	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/respond"
	"github.com/salescope/salescope/pkg/sqlexec"
	"github.com/salescope/salescope/pkg/table"
)

// Config holds the dependencies of a Pipeline.
type Config struct {
	Logger    *slog.Logger
	Responder *respond.Responder
	Executor  *sqlexec.Executor
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Responder == nil {
		return fmt.Errorf("responder is required")
	}
	if c.Executor == nil {
		return fmt.Errorf("executor is required")
	}
	return nil
}

// Pipeline answers one question per Run call.
type Pipeline struct {
	cfg Config
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Pipeline{cfg: cfg}, nil
}

// Turn is the outcome of answering one question.
type Turn struct {
	Question        string
	Explanation     string
	SQL             string
	Result          *table.Table
	Chart           *chart.Spec
	AnalysisText    string
	Recommendations []respond.Recommendation
	ErrorMessage    string
}

// Run answers the question against tbl. It returns the turn and the updated
// conversation history: the question is appended as a user turn and, when
// generation succeeds, its serialized JSON is appended as the assistant turn
// so follow-up questions can refer to the previous query.
func (p *Pipeline) Run(ctx context.Context, question string, tbl *table.Table, framework string, history []llm.Message) (*Turn, []llm.Message) {
	history = append(history, llm.UserMessage(question))
	turn := &Turn{Question: question}

	gen, err := p.cfg.Responder.GenerateQuery(ctx, history, framework)
	if err != nil {
		p.cfg.Logger.Error("pipeline: query generation failed", "error", err)
		turn.ErrorMessage = fmt.Sprintf("query generation failed: %v", err)
		return turn, history
	}

	if ctxJSON, err := json.Marshal(gen); err == nil {
		history = append(history, llm.AssistantMessage(string(ctxJSON)))
	}

	turn.SQL = gen.SQLQuery
	turn.Explanation = gen.Spec.Explanation
	turn.Recommendations = gen.RecommendedAnalyses

	if gen.SQLQuery == "" {
		p.cfg.Logger.Info("pipeline: no query generated, returning recommendations", "count", len(gen.RecommendedAnalyses))
		return turn, history
	}

	result, err := p.cfg.Executor.Execute(ctx, gen.SQLQuery, tbl)
	if err != nil {
		p.cfg.Logger.Error("pipeline: query execution failed", "error", err)
		turn.ErrorMessage = fmt.Sprintf("query execution failed: %v", err)
		return turn, history
	}
	turn.Result = result

	preliminary := gen.Spec
	if result.Count == 0 {
		turn.Chart = &preliminary
		return turn, history
	}

	analysis, err := p.cfg.Responder.AnalyzeResult(ctx, result, question, framework)
	if err != nil {
		// Analysis is best-effort: the data and the preliminary chart hint
		// are still worth showing.
		p.cfg.Logger.Warn("pipeline: analysis failed, falling back to preliminary chart", "error", err)
		turn.Chart = &preliminary
		return turn, history
	}

	turn.AnalysisText = analysis.AnalysisText
	spec := analysis.Spec
	turn.Chart = &spec
	return turn, history
}
