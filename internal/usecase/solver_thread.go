package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pnordq/pnfem/internal/domain"
)

// Job is one unit of work for the SolverThread: a solve or a parameter study.
type Job func(ctx context.Context) (domain.RunArtifact, string, error)

// Done is the finished signal of a job.
type Done struct {
	JobID    string
	Artifact domain.RunArtifact
	RunID    string
	Err      error
}

// SolverThread runs at most one job at a time in the background.
type SolverThread struct {
	base
	mu      sync.Mutex
	current string
}

func NewSolverThread(opts ...Option) *SolverThread {
	t := &SolverThread{base: newBase()}
	apply(&t.base, opts)
	return t
}

// Busy reports whether a job is running.
func (t *SolverThread) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != ""
}

// Current returns the running job ID, or "".
func (t *SolverThread) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Start launches job on a goroutine. The returned channel receives exactly one
// Done and is then closed. A second Start while busy fails with ErrBusy.
func (t *SolverThread) Start(ctx context.Context, job Job) (string, <-chan Done, error) {
	t.mu.Lock()
	if t.current != "" {
		running := t.current
		t.mu.Unlock()
		return "", nil, &domain.OpError{
			Op:   "solver.start",
			Kind: domain.KindBusy,
			Err:  fmt.Errorf("job %s is running: %w", running, domain.ErrBusy),
		}
	}
	id := uuid.NewString()
	t.current = id
	t.mu.Unlock()

	done := make(chan Done, 1)
	t.log.Debug("solver.job_start", "job", id)

	go func() {
		d := Done{JobID: id}
		defer func() {
			if r := recover(); r != nil {
				t.log.Error("panic.recovered", "job", id, "panic", fmt.Sprint(r))
				d.Err = &domain.OpError{
					Op:   "solver.job",
					Kind: domain.KindExecution,
					Err:  fmt.Errorf("internal error: %v: %w", r, domain.ErrExecution),
				}
			}
			t.mu.Lock()
			t.current = ""
			t.mu.Unlock()

			done <- d
			close(done)
		}()

		d.Artifact, d.RunID, d.Err = job(ctx)
		t.log.Debug("solver.job_done", "job", id, "run", d.RunID, "error", d.Err)
	}()

	return id, done, nil
}
