package analysis

// Status is the lifecycle state of a deep-dive analysis job. The name records
// the last stage that completed, not the one in progress.
type Status string

const (
	StatusStarted        Status = "STARTED"
	StatusStage1Complete Status = "STAGE1_COMPLETE"
	StatusStage2Complete Status = "STAGE2_COMPLETE"
	StatusStage3Complete Status = "STAGE3_COMPLETE"
	StatusDone           Status = "DONE"
	StatusFailed         Status = "FAILED"
)

// Terminal reports whether no further work will happen on the job.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// canTransition is the legal transition table. Evidence collection repeats
// within STAGE2_COMPLETE without a transition.
var canTransition = map[Status][]Status{
	StatusStarted:        {StatusStage1Complete, StatusFailed},
	StatusStage1Complete: {StatusStage2Complete, StatusFailed},
	StatusStage2Complete: {StatusStage3Complete, StatusFailed},
	StatusStage3Complete: {StatusDone, StatusFailed},
}

func transitionAllowed(from, to Status) bool {
	for _, s := range canTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}
