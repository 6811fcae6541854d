package analysis

import (
	"time"

	"github.com/salescope/salescope/pkg/chart"
	"github.com/salescope/salescope/pkg/respond"
	"github.com/salescope/salescope/pkg/table"
)

// Baseline is the stage-1 result: the query the original question translated
// to and the data it returned.
type Baseline struct {
	SQL   string
	Data  *table.Table
	Chart *chart.Spec
}

// Evidence is one collected plan-step result. Data is nil when the step's
// query failed; Markdown then carries a failure note instead of a table.
type Evidence struct {
	Purpose  string
	Data     *table.Table
	Markdown string
}

// Stages accumulates the outputs of each completed stage. EvidenceKeys holds
// the evidence map keys in collection order; its length is the sole cursor
// for resuming stage 3.
type Stages struct {
	Baseline     *Baseline
	Plan         []respond.PlanStep
	Evidence     map[string]Evidence
	EvidenceKeys []string
	Report       *respond.Report
}

// Job is a resumable deep-dive analysis job.
type Job struct {
	Status        Status
	OriginalQuery string
	StatusMessage string
	StageInfo     string
	Stages        Stages
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChartData resolves a report chart's data_key to collected data: "baseline"
// for the stage-1 table, or a recorded evidence key. Anything else returns
// nil; only resolvable keys are chartable.
func (j *Job) ChartData(key string) *table.Table {
	if key == "baseline" {
		if j.Stages.Baseline == nil {
			return nil
		}
		return j.Stages.Baseline.Data
	}
	if ev, ok := j.Stages.Evidence[key]; ok {
		return ev.Data
	}
	return nil
}
