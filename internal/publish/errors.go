package publish

import (
	"errors"
	"fmt"
)

// ErrEmptyCollection reports a collection that has no lessons to update.
var ErrEmptyCollection = errors.New("collection has no lessons")

// PartialUploadError reports a failure after the remote collection was
// created. The collection is left in place.
type PartialUploadError struct {
	CollectionID    int
	LessonsUploaded int
	LessonsTotal    int
	Err             error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("collection %d left partially uploaded (%d/%d lessons); remove it manually or retry: %v",
		e.CollectionID, e.LessonsUploaded, e.LessonsTotal, e.Err)
}

func (e *PartialUploadError) Unwrap() error { return e.Err }

// CollectionID extracts the remote collection left behind by a failed
// upload, if any.
func CollectionID(err error) (int, bool) {
	var partial *PartialUploadError
	if errors.As(err, &partial) && partial.CollectionID != 0 {
		return partial.CollectionID, true
	}
	return 0, false
}
