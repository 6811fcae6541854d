// Package analysis orchestrates the four-stage deep-dive report workflow:
// baseline collection, planning, evidence gathering, and synthesis. Each
// Advance call performs exactly one unit of work so callers can poll
// cooperatively and resume after interruption.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/respond"
	"github.com/salescope/salescope/pkg/sqlexec"
	"github.com/salescope/salescope/pkg/table"
)

// baselineSampleRows is how many baseline rows the planner sees.
const baselineSampleRows = 20

// Config holds the dependencies of an Orchestrator.
type Config struct {
	Logger    *slog.Logger
	Responder *respond.Responder
	Executor  *sqlexec.Executor
	Clock     clockwork.Clock
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
	if c.Clock == nil {
		return fmt.Errorf("clock is required")
	}
	return nil
}

// Orchestrator drives jobs through the stage machine. It holds no job state
// itself; all progress lives on the Job.
type Orchestrator struct {
	cfg Config
}

func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Orchestrator{cfg: cfg}, nil
}

// NewJob creates a job for the given question in the STARTED state.
func (o *Orchestrator) NewJob(question string) *Job {
	now := o.cfg.Clock.Now()
	return &Job{
		Status:        StatusStarted,
		OriginalQuery: question,
		StatusMessage: "job created",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Advance performs one unit of work on the job: one stage, or one evidence
// step within stage 3. Terminal jobs are left untouched. Failures move the
// job to FAILED with a message naming the failed operation, except per-step
// evidence failures, which are recorded as evidence content so the remaining
// steps still run.
func (o *Orchestrator) Advance(ctx context.Context, job *Job, tbl *table.Table) error {
	switch job.Status {
	case StatusStarted:
		return o.collectBaseline(ctx, job, tbl)
	case StatusStage1Complete:
		return o.planSteps(ctx, job)
	case StatusStage2Complete:
		return o.collectEvidence(ctx, job, tbl)
	case StatusStage3Complete:
		return o.synthesize(ctx, job)
	case StatusDone, StatusFailed:
		return nil
	default:
		return fmt.Errorf("unknown job status %q", job.Status)
	}
}

func (o *Orchestrator) collectBaseline(ctx context.Context, job *Job, tbl *table.Table) error {
	o.cfg.Logger.Info("analysis: collecting baseline", "question", job.OriginalQuery)

	history := []llm.Message{llm.UserMessage(job.OriginalQuery)}
	gen, err := o.cfg.Responder.GenerateQuery(ctx, history, "")
	if err != nil {
		return o.fail(job, fmt.Errorf("baseline query generation failed: %w", err))
	}
	if gen.SQLQuery == "" {
		return o.fail(job, fmt.Errorf("baseline query generation produced no sql"))
	}

	data, err := o.cfg.Executor.Execute(ctx, gen.SQLQuery, tbl)
	if err != nil {
		return o.fail(job, fmt.Errorf("baseline query execution failed: %w", err))
	}

	spec := gen.Spec
	job.Stages.Baseline = &Baseline{SQL: gen.SQLQuery, Data: data, Chart: &spec}
	return o.transition(job, StatusStage1Complete, fmt.Sprintf("baseline collected (%d rows)", data.Count))
}

func (o *Orchestrator) planSteps(ctx context.Context, job *Job) error {
	o.cfg.Logger.Info("analysis: planning steps")

	summary := job.Stages.Baseline.Data.Head(baselineSampleRows).Markdown()
	steps, err := o.cfg.Responder.PlanAnalysis(ctx, job.OriginalQuery, summary)
	if err != nil {
		return o.fail(job, fmt.Errorf("analysis planning failed: %w", err))
	}

	job.Stages.Plan = steps
	job.Stages.Evidence = make(map[string]Evidence, len(steps))
	job.Stages.EvidenceKeys = nil
	return o.transition(job, StatusStage2Complete, fmt.Sprintf("plan ready (%d steps)", len(steps)))
}

func (o *Orchestrator) collectEvidence(ctx context.Context, job *Job, tbl *table.Table) error {
	cursor := len(job.Stages.EvidenceKeys)
	step := job.Stages.Plan[cursor]
	key := fmt.Sprintf("evidence_%d", cursor+1)
	o.cfg.Logger.Info("analysis: collecting evidence", "key", key, "purpose", step.Purpose)

	ev := Evidence{Purpose: step.Purpose}
	data, err := o.cfg.Executor.Execute(ctx, step.SQL, tbl)
	if err != nil {
		// A failed step is evidence too: record the failure and move on so
		// one bad query does not sink the whole report.
		o.cfg.Logger.Warn("analysis: evidence step failed", "key", key, "error", err)
		ev.Markdown = fmt.Sprintf("(query failed: %v)", err)
	} else {
		ev.Data = data
		ev.Markdown = data.Markdown()
	}

	job.Stages.Evidence[key] = ev
	job.Stages.EvidenceKeys = append(job.Stages.EvidenceKeys, key)
	job.StageInfo = fmt.Sprintf("evidence %d/%d", cursor+1, len(job.Stages.Plan))

	if len(job.Stages.EvidenceKeys) == len(job.Stages.Plan) {
		return o.transition(job, StatusStage3Complete, "evidence collection complete")
	}
	job.StatusMessage = fmt.Sprintf("collected %s", key)
	job.UpdatedAt = o.cfg.Clock.Now()
	return nil
}

func (o *Orchestrator) synthesize(ctx context.Context, job *Job) error {
	o.cfg.Logger.Info("analysis: synthesizing report", "evidence", len(job.Stages.EvidenceKeys))

	evidence := make([]respond.EvidenceInput, 0, len(job.Stages.EvidenceKeys))
	for _, key := range job.Stages.EvidenceKeys {
		ev := job.Stages.Evidence[key]
		evidence = append(evidence, respond.EvidenceInput{Key: key, Purpose: ev.Purpose, Markdown: ev.Markdown})
	}

	report, err := o.cfg.Responder.SynthesizeReport(ctx, job.OriginalQuery, evidence, job.Stages.Baseline.Data.Columns)
	if err != nil {
		return o.fail(job, fmt.Errorf("report synthesis failed: %w", err))
	}

	job.Stages.Report = report
	return o.transition(job, StatusDone, "report ready")
}

// transition is the single mutation point for job status.
func (o *Orchestrator) transition(job *Job, to Status, message string) error {
	if !transitionAllowed(job.Status, to) {
		return fmt.Errorf("illegal transition %s -> %s", job.Status, to)
	}
	o.cfg.Logger.Info("analysis: job transition", "from", job.Status, "to", to, "message", message)
	job.Status = to
	job.StatusMessage = message
	job.UpdatedAt = o.cfg.Clock.Now()
	return nil
}

func (o *Orchestrator) fail(job *Job, cause error) error {
	if err := o.transition(job, StatusFailed, cause.Error()); err != nil {
		return err
	}
	return cause
}
