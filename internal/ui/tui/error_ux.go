package tui

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pnordq/pnfem/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

func userMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	if errors.Is(err, domain.ErrMeshTooFine) {
		return "The mesh is too fine, increase the element size"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr.Issues))
		for _, is := range verr.Issues {
			msgs = append(msgs, is.Message)
		}
		if len(msgs) == 0 {
			return "Invalid input"
		}
		return strings.Join(msgs, "\n")
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {

		case domain.KindNotFound:
			if strings.Contains(oe.Op, "jsonmodel") {
				return "Model file not found"
			}
			if strings.Contains(oe.Op, "workspacefinder.findroot") {
				return "Workspace not found"
			}
			if errors.Is(err, domain.ErrNoResult) {
				return "Nothing to show, execute the model first"
			}
			return "Not found"

		case domain.KindInvalidModel:
			base := "model"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			return "Invalid model file " + base

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}

			line := extractLine(err.Error())
			if line != "" {
				return "Invalid YAML at " + base + " line " + line
			}

			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			return "Invalid config"

		case domain.KindBusy:
			return "The solver is still running"

		default:
			return "Unexpected error (see logs)"
		}
	}

	if errors.Is(err, domain.ErrBusy) {
		return "The solver is still running"
	}
	if looksLikeYAMLProblem(err.Error()) {
		line := extractLine(err.Error())
		if line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}

	return "Unexpected error (see logs)"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
