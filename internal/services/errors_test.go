package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lingq_upload/internal/history"
	"lingq_upload/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrRemote, "publish", "create lesson", "lesson 3", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"publish", "create lesson", "lesson 3"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "upload step failed") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestStageOfReportsOutermostStage(t *testing.T) {
	inner := services.Wrap(services.ErrRemote, "lessons", "attach audio", "", errors.New("io"))
	outer := fmt.Errorf("publish: %w", inner)
	if got := services.StageOf(outer); got != "lessons" {
		t.Fatalf("expected lessons stage, got %q", got)
	}
	if got := services.StageOf(errors.New("plain")); got != "" {
		t.Fatalf("expected no stage, got %q", got)
	}
	var stageErr *services.StageError
	if !errors.As(outer, &stageErr) || stageErr.Operation != "attach audio" {
		t.Fatalf("expected StageError in chain, got %v", outer)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "plan", "build", "mismatch", nil)
	if status := services.FailureStatus(validationErr); status != history.StatusRejected {
		t.Fatalf("expected rejected for validation error, got %s", status)
	}

	remoteErr := services.Wrap(services.ErrRemote, "publish", "attach audio", "upload failed", errors.New("io"))
	if status := services.FailureStatus(remoteErr); status != history.StatusFailed {
		t.Fatalf("expected failed for remote error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != history.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}
