// Package main hosts the lingq CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into runs of the ingest
// pipeline and the LingQ publisher, english-e-reader.net downloads, podcast
// imports and upload history queries. Configuration resolution, logger
// construction and the per-source upload lock live here; the heavy lifting
// stays in the internal packages.
package main
