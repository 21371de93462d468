// Package publish turns an ingest.UploadPlan into a LingQ collection.
//
// Publishing is strictly sequential and follows plan order: the collection
// is created, its cover uploaded, then each lesson is created and given its
// audio before the next one starts. Lesson metadata (tags, the books shelf,
// level and shared status) is applied in bulk once every lesson exists, and
// timestamp generation is requested last without waiting for the result.
//
// Nothing is rolled back. A failure after the collection exists surfaces as
// a *PartialUploadError naming the collection so it can be cleaned up by
// hand, and the history journal records how far the run got.
package publish
