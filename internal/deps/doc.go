// Package deps resolves the external command-line tools used by the
// downloader, such as m4b-tool for splitting audiobooks into chapters.
package deps
