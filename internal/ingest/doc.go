// Package ingest turns a book directory into an upload plan.
//
// The pipeline runs four stages strictly in order, each handing its output to
// the next by value:
//
//   - Discover locates the EPUB, metadata sidecar, cover image and the ordered
//     chapter MP3 files.
//   - LoadMetadata reads and sanitizes the sidecar and applies command-line
//     overrides.
//   - ExtractChapters selects the chapter documents of the EPUB and flattens
//     them to plain text.
//   - BuildPlan pairs chapters with audio files positionally and resolves the
//     collection-level fields.
//
// Every validation failure is raised before anything remote happens. The
// typed errors in errors.go name the offending asset, field or counts so the
// operator can fix the directory and re-run.
package ingest
