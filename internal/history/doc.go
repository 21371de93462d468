// Package history keeps a local SQLite journal of upload runs.
//
// Each run of "lingq upload" or "lingq podcast" gets one row keyed by a UUID.
// The publisher advances the row as it works (planned, uploading, completed or
// failed) and records the remote collection ID as soon as it exists, so a run
// that dies half way still tells the operator which collection needs manual
// cleanup. Rejected runs never reached the remote side.
//
// The schema is versioned; a mismatched database is refused rather than
// migrated.
package history
