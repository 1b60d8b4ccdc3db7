package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pnordq/pnfem/internal/domain"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"cancel", fmt.Errorf("solve: %w", context.Canceled), "Cancelled"},
		{"mesh", &domain.OpError{Op: "femsolver.mesh", Kind: domain.KindInvalidModel, Err: domain.ErrMeshTooFine}, "The mesh is too fine, increase the element size"},
		{"validation", &domain.ValidationError{Issues: []domain.Issue{{Message: "one"}, {Message: "two"}}}, "one\ntwo"},
		{"model not found", &domain.OpError{Op: "jsonmodel.load", Kind: domain.KindNotFound}, "Model file not found"},
		{"bad model", &domain.OpError{Op: "jsonmodel.load", Kind: domain.KindInvalidModel, Path: "/x/plate.json"}, "Invalid model file plate.json"},
		{"yaml line", &domain.OpError{Op: "config.load", Kind: domain.KindInvalidConfig, Path: "/w/pnfem.yaml", Err: errors.New("yaml: line 7: did not find expected key")}, "Invalid YAML at pnfem.yaml line 7"},
		{"busy", &domain.OpError{Op: "solver.start", Kind: domain.KindBusy, Err: domain.ErrBusy}, "The solver is still running"},
		{"no result", &domain.OpError{Op: "figures.render", Kind: domain.KindNotFound, Err: domain.ErrNoResult}, "Nothing to show, execute the model first"},
		{"other", errors.New("boom"), "Unexpected error (see logs)"},
	}
	for _, tc := range cases {
		if got := userMessage(tc.err); got != tc.want {
			t.Errorf("%s: userMessage = %q, want %q", tc.name, got, tc.want)
		}
	}
}
