package domain

import "time"

// RunKind tells a single solve from a parameter study.
type RunKind string

const (
	RunSolve RunKind = "solve"
	RunStudy RunKind = "study"
)

// CheckResult is the output of a single result check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// RunArtifact represents a persisted run for reproducibility.
type RunArtifact struct {
	ID   string
	Kind RunKind

	ModelName string
	ModelPath string

	StartedAt  time.Time
	FinishedAt time.Time

	Input  InputData
	Output *OutputData
	Study  *StudyResult

	Checks []CheckResult
}

// RunRef is a lightweight pointer to a saved run.
type RunRef struct {
	ID        string
	Path      string
	Kind      RunKind
	ModelName string
	StartedAt time.Time
}

// FailedChecks counts the checks that did not pass.
func (r RunArtifact) FailedChecks() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}
