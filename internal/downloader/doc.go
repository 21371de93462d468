// Package downloader fetches books, with their EPUB, audio and metadata
// sidecar, into a directory layout that ingest.Discover understands.
//
// A Manager routes an input (a slug or a URL) to the first registered
// Provider that claims it. EnglishEReaderProvider scrapes
// english-e-reader.net, writes metadata.json and unpacks the per-chapter
// MP3 archive into <slug>_splitted. When only a single MP3 and a CUE sheet
// are available, AudioProcessor splits the recording with m4b-tool.
package downloader
