package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/report"
)

func printRun(w io.Writer, run domain.RunArtifact, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.RunArtifact, runID string) {
	total := run.FinishedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Model:      %s\n", run.ModelName)
	fmt.Fprintf(w, "Kind:       %s\n", run.Kind)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Finished:   %s\n", run.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:   %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", runID)
	}
	fmt.Fprintln(w)

	if run.Output != nil && !run.Output.Empty() {
		_ = report.WriteSummary(w, run.Output.Summary)
		fmt.Fprintln(w)
	}

	if run.Study != nil && len(run.Study.Steps) > 0 {
		t := report.StudyTable(run.Study)
		fmt.Fprintf(w, "%s:\n%s\n", t.Title, t.Render())
		if run.Study.PlotFile != "" {
			fmt.Fprintf(w, "Plot:       %s\n", run.Study.PlotFile)
		}
		fmt.Fprintln(w)
	}

	if len(run.Checks) > 0 {
		pass, fail := countCheckPassFail(run.Checks)
		fmt.Fprintf(w, "checks: %d pass / %d fail\n", pass, fail)
		for _, c := range run.Checks {
			mark := "✓"
			if !c.Passed {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s: %s\n", mark, c.Name, c.Message)
		}
	}
}

func countCheckPassFail(in []domain.CheckResult) (pass int, fail int) {
	for _, c := range in {
		if c.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

// printIssues lists validation issues one per line.
func printIssues(w io.Writer, verr *domain.ValidationError) {
	if verr == nil {
		return
	}
	for _, is := range verr.Issues {
		fmt.Fprintf(w, "- [%s] %s: %s\n", is.Group, is.Field, is.Message)
	}
}

func checksError(run domain.RunArtifact) error {
	if n := run.FailedChecks(); n > 0 {
		return fmt.Errorf("%s failed (%d failed check(s))", run.Kind, n)
	}
	return nil
}
