// Package textutil provides the small text helpers shared by the pipeline and
// the downloader: HTML entity cleanup for scraped tags, Unicode normalisation,
// title casing of slugs and filename sanitization.
package textutil
