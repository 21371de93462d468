package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"lingq_upload/internal/textutil"
)

// MaxSourceTags is the number of sidecar tags kept. LingQ accepts ten tags and
// one slot is reserved for BookTag.
const MaxSourceTags = 9

// Metadata is the resolved descriptive record of a book.
type Metadata struct {
	Title       string
	Description string
	Level       string
	Tags        []string
	Author      string
}

// Overrides carries optional command-line replacements. A nil field leaves the
// sidecar value in place.
type Overrides struct {
	Title *string
	Level *string
	Tags  *string
}

type sidecar struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
}

// LoadMetadata reads the sidecar at path, sanitizes its tags and applies ov.
func LoadMetadata(path string, ov Overrides) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, &MissingAssetError{Asset: AssetMetadata, Path: path}
		}
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	meta, err := ParseMetadata(data, ov)
	if err != nil {
		if invalid, ok := err.(*InvalidMetadataError); ok {
			invalid.Path = path
		}
		return Metadata{}, err
	}
	return meta, nil
}

// ParseMetadata decodes a sidecar record and applies ov. It performs no I/O.
func ParseMetadata(data []byte, ov Overrides) (Metadata, error) {
	var rec sidecar
	if err := json.Unmarshal(data, &rec); err != nil {
		field := ""
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			field = typeErr.Field
		}
		return Metadata{}, &InvalidMetadataError{Field: field, Err: err}
	}

	meta := Metadata{
		Title:       strings.TrimSpace(rec.Title),
		Description: strings.TrimSpace(rec.Description),
		Level:       strings.TrimSpace(rec.Level),
		Tags:        SanitizeTags(rec.Tags),
		Author:      strings.TrimSpace(rec.Author),
	}

	if ov.Title != nil {
		meta.Title = strings.TrimSpace(*ov.Title)
	}
	if ov.Level != nil {
		meta.Level = strings.TrimSpace(*ov.Level)
	}
	if ov.Tags != nil {
		meta.Tags = ParseTagList(*ov.Tags)
	}

	if meta.Title == "" {
		return Metadata{}, &InvalidMetadataError{Field: "title"}
	}
	return meta, nil
}

// SanitizeTags keeps at most the first MaxSourceTags entries, cleans each one
// and drops entries that end up empty. Applying it to its own output returns
// the same list.
func SanitizeTags(tags []string) []string {
	if len(tags) > MaxSourceTags {
		tags = tags[:MaxSourceTags]
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if cleaned := textutil.CleanTag(tag); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// ParseTagList splits a comma-separated override, trims entries, drops empty
// ones and caps the result at MaxSourceTags.
func ParseTagList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if len(out) == MaxSourceTags {
			break
		}
		if cleaned := textutil.CleanTag(part); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
