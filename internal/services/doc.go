// Package services defines shared utilities consumed by the ingestion pipeline,
// the publisher and the remote integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names and source directories
//     for logging and the upload history.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs rejected).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
