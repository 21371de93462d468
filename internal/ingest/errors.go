package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAsset         = errors.New("missing asset")
	ErrInvalidMetadata      = errors.New("invalid metadata")
	ErrNoChapters           = errors.New("no chapters")
	ErrChapterAudioMismatch = errors.New("chapter audio mismatch")
)

// Asset names a required input of the pipeline.
type Asset string

const (
	AssetDirectory Asset = "source directory"
	AssetEPUB      Asset = "epub"
	AssetAudio     Asset = "audio"
	AssetMetadata  Asset = "metadata"
)

// MissingAssetError reports a required local file or directory that could not
// be located.
type MissingAssetError struct {
	Asset  Asset
	Path   string
	Detail string
}

func (e *MissingAssetError) Error() string {
	msg := fmt.Sprintf("missing %s", e.Asset)
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *MissingAssetError) Is(target error) bool { return target == ErrMissingAsset }

// InvalidMetadataError reports a sidecar that is missing a required field or
// cannot be decoded.
type InvalidMetadataError struct {
	Path  string
	Field string
	Err   error
}

func (e *InvalidMetadataError) Error() string {
	prefix := "invalid metadata"
	if e.Path != "" {
		prefix += " " + e.Path
	}
	switch {
	case e.Err != nil && e.Field != "":
		return fmt.Sprintf("%s: field %q: %v", prefix, e.Field, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %q is required", prefix, e.Field)
	}
}

func (e *InvalidMetadataError) Is(target error) bool { return target == ErrInvalidMetadata }

func (e *InvalidMetadataError) Unwrap() error { return e.Err }

// NoChaptersError reports a book whose container yielded no usable documents.
type NoChaptersError struct {
	Book      string
	Documents int
}

func (e *NoChaptersError) Error() string {
	return fmt.Sprintf("no valid chapters found in %s (%d documents): the EPUB may be empty or corrupted", e.Book, e.Documents)
}

func (e *NoChaptersError) Is(target error) bool { return target == ErrNoChapters }

// ChapterAudioMismatchError reports differing chapter and audio counts.
type ChapterAudioMismatchError struct {
	Chapters int
	Audio    int
}

func (e *ChapterAudioMismatchError) Error() string {
	return fmt.Sprintf("chapter count %d must match audio count %d", e.Chapters, e.Audio)
}

func (e *ChapterAudioMismatchError) Is(target error) bool { return target == ErrChapterAudioMismatch }
