package domain

import "time"

// Outcome is the status carried by a progress checkpoint.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeRunning Outcome = "running"
	OutcomeDone    Outcome = "done"
	OutcomeError   Outcome = "error"
)

// Checkpoint is one progress event of a pipeline run.
type Checkpoint struct {
	RunID     string         `json:"run_id"`
	Step      string         `json:"step"`
	Payload   map[string]any `json:"payload,omitempty"`
	Actor     string         `json:"actor,omitempty"`
	Link      string         `json:"link,omitempty"`
	Outcome   Outcome        `json:"outcome"`
	Timestamp time.Time      `json:"timestamp"`
}

// RunState is a state of the pipeline run state machine. States are ordered;
// a run only moves forward, except into StateFailed.
type RunState int

const (
	StatePending RunState = iota
	StateDownloading
	StateExtracting
	StateCollecting
	StateAnalyzing
	StateComparing
	StateCompleted
	StateFailed
)

var stateNames = map[RunState]string{
	StatePending:     "pending",
	StateDownloading: "downloading",
	StateExtracting:  "extracting",
	StateCollecting:  "collecting",
	StateAnalyzing:   "analyzing",
	StateComparing:   "comparing",
	StateCompleted:   "completed",
	StateFailed:      "failed",
}

func (s RunState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
