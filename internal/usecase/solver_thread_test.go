package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
)

func waitDone(t *testing.T, ch <-chan Done) Done {
	t.Helper()
	select {
	case d, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without Done")
		}
		return d
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for Done")
	}
	return Done{}
}

func TestSolverThread_RunsJobAndSignalsOnce(t *testing.T) {
	th := NewSolverThread()
	id, ch, err := th.Start(context.Background(), func(context.Context) (domain.RunArtifact, string, error) {
		return domain.RunArtifact{ModelName: "plate"}, "run-1", nil
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected job id")
	}

	d := waitDone(t, ch)
	if d.JobID != id || d.RunID != "run-1" || d.Artifact.ModelName != "plate" || d.Err != nil {
		t.Fatalf("unexpected done %+v", d)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after Done")
	}
	if th.Busy() {
		t.Fatalf("expected idle after Done")
	}
}

func TestSolverThread_BusyRejectsSecondJob(t *testing.T) {
	th := NewSolverThread()
	release := make(chan struct{})
	started := make(chan struct{})

	_, ch, err := th.Start(context.Background(), func(context.Context) (domain.RunArtifact, string, error) {
		close(started)
		<-release
		return domain.RunArtifact{}, "", nil
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	<-started

	if !th.Busy() || th.Current() == "" {
		t.Fatalf("expected busy worker")
	}
	_, _, err = th.Start(context.Background(), func(context.Context) (domain.RunArtifact, string, error) {
		t.Fatalf("second job must not run")
		return domain.RunArtifact{}, "", nil
	})
	if !errors.Is(err, domain.ErrBusy) || !domain.IsKind(err, domain.KindBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	waitDone(t, ch)

	_, ch2, err := th.Start(context.Background(), func(context.Context) (domain.RunArtifact, string, error) {
		return domain.RunArtifact{}, "", nil
	})
	if err != nil {
		t.Fatalf("expected worker free again, got %v", err)
	}
	waitDone(t, ch2)
}

func TestSolverThread_PassesErrorsAndContext(t *testing.T) {
	th := NewSolverThread()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ch, err := th.Start(ctx, func(ctx context.Context) (domain.RunArtifact, string, error) {
		return domain.RunArtifact{}, "", ctx.Err()
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if d := waitDone(t, ch); !errors.Is(d.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", d.Err)
	}
}

func TestSolverThread_RecoversPanic(t *testing.T) {
	th := NewSolverThread()
	_, ch, err := th.Start(context.Background(), func(context.Context) (domain.RunArtifact, string, error) {
		panic("index out of range")
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	d := waitDone(t, ch)
	if !errors.Is(d.Err, domain.ErrExecution) {
		t.Fatalf("expected execution error, got %v", d.Err)
	}
	if th.Busy() {
		t.Fatalf("expected idle after panic")
	}
}
