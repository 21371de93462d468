// Package epub reads the parts of an EPUB container the ingestion pipeline
// needs: the manifest documents in manifest order, their paragraph text, the
// Dublin Core title/creator and an optional cover image.
//
// It is deliberately small. Rendering, navigation documents and DRM are out of
// scope; the reader only follows META-INF/container.xml to the package file and
// serves manifest entries straight from the zip archive.
package epub
