package services

import (
	"errors"
	"strings"

	"lingq_upload/internal/history"
)

// Failure classes. Each StageError carries exactly one of them.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrRemote        = errors.New("remote call failed")
	ErrTransient     = errors.New("transient failure")
)

// StageError ties a failure to the upload stage and operation that produced
// it. errors.Is matches both the class and the wrapped cause.
type StageError struct {
	Class     error
	Stage     string
	Operation string
	Detail    string
	Err       error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Class.Error())
	b.WriteString(": ")
	b.WriteString(e.where())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StageError) where() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.Stage, e.Operation, e.Detail} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "upload step failed"
	}
	return strings.Join(parts, ": ")
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

// Wrap classifies err as a failure of operation within stage. A nil class
// is treated as transient.
func Wrap(class error, stage, operation, detail string, err error) error {
	if class == nil {
		class = ErrTransient
	}
	return &StageError{Class: class, Stage: stage, Operation: operation, Detail: detail, Err: err}
}

// StageOf returns the stage of the outermost StageError in err's chain.
func StageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// FailureStatus maps a run error to its history status. Problems found
// locally before anything remote exists are rejected rather than failed.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return history.StatusRejected
	default:
		return history.StatusFailed
	}
}
