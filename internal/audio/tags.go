package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"lingq_upload/internal/textutil"
)

// ErrNoTitle reports a file without a usable ID3 title frame.
var ErrNoTitle = errors.New("no id3 title")

// Tags holds the ID3 frames used when naming lessons.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags parses the ID3v2 frames of an MP3 file. Files without a tag
// return empty Tags and no error.
func ReadTags(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title", "Artist", "Album"}})
	if err != nil {
		if os.IsNotExist(err) {
			return Tags{}, err
		}
		return Tags{}, fmt.Errorf("read id3 tags %s: %w", filepath.Base(path), err)
	}
	defer tag.Close()

	return Tags{
		Title:  clean(tag.Title()),
		Artist: clean(tag.Artist()),
		Album:  clean(tag.Album()),
	}, nil
}

// ReadTitle returns the TIT2 frame of an MP3 file.
func ReadTitle(path string) (string, error) {
	tags, err := ReadTags(path)
	if err != nil {
		return "", err
	}
	if tags.Title == "" {
		return "", ErrNoTitle
	}
	return tags.Title, nil
}

// TitleOrFallback returns the ID3 title of path, or fallback when the file
// carries none or cannot be parsed.
func TitleOrFallback(path, fallback string) string {
	title, err := ReadTitle(path)
	if err != nil {
		return fallback
	}
	return title
}

func clean(value string) string {
	value = strings.TrimRight(value, "\x00")
	return textutil.CleanTag(value)
}
