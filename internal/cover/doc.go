// Package cover shrinks oversized book covers before they are attached to
// a collection or a lesson.
//
// Covers that already fit are uploaded untouched. Larger JPEG and PNG covers
// are scaled with Catmull-Rom resampling and re-encoded as JPEG.
package cover
