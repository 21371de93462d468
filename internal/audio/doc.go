// Package audio reads ID3 metadata from chapter and episode MP3 files.
package audio
