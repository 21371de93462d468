package lingq

import (
	"errors"
	"fmt"
)

// ErrRemoteCallFailed matches every *Failed error.
var ErrRemoteCallFailed = errors.New("remote call failed")

// Failed reports a LingQ call that did not succeed. StatusCode is zero when
// the request never produced a response.
type Failed struct {
	Operation  string
	StatusCode int
	Diagnostic string
	Err        error
}

func (f *Failed) Error() string {
	msg := "lingq " + f.Operation + " failed"
	if f.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", f.StatusCode)
	}
	if f.Diagnostic != "" {
		msg += ": " + f.Diagnostic
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failed) Is(target error) bool { return target == ErrRemoteCallFailed }

func (f *Failed) Unwrap() error { return f.Err }
