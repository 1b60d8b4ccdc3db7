package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidModel  = errors.New("invalid model")
	ErrMeshTooFine   = errors.New("mesh too fine")
	ErrBusy          = errors.New("solver busy")
	ErrNoResult      = errors.New("no result")
	ErrExecution     = errors.New("execution error")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindInvalidModel  ErrorKind = "invalid_model"
	KindExecution     ErrorKind = "execution"
	KindBusy          ErrorKind = "busy"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
// A *ValidationError always counts as KindInvalidModel.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return kind == KindInvalidModel
	}
	return false
}

// KindOf returns the kind of the outermost OpError, or KindExecution.
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindInvalidModel
	}
	if errors.Is(err, ErrBusy) {
		return KindBusy
	}
	return KindExecution
}
