package ingest

import (
	"fmt"
	"strings"

	"lingq_upload/internal/epub"
)

// ParagraphSeparator joins paragraph texts inside a chapter body.
const ParagraphSeparator = "\r\n\r\n"

const (
	splitMarker = "split"
	titleMarker = "title"
	indexMarker = "index"
)

// Container is the view of a book the chapter extractor needs.
type Container interface {
	Documents() []epub.Document
}

// Chapter is one chapter body together with the document it came from.
type Chapter struct {
	Name string
	Text string
}

// ChapterSet is the ordered chapter list of a book.
type ChapterSet struct {
	Chapters []Chapter
	// Strategy records which selection tier produced the set.
	Strategy string
}

// Len returns the number of chapters.
func (s ChapterSet) Len() int { return len(s.Chapters) }

const (
	StrategyPreSplit   = "pre-split"
	StrategySingleFile = "single-file"
)

// SelectChapterDocuments applies the two selection tiers to names and returns
// the chosen indexes in input order.
//
// Tier one keeps every name containing "split". When that yields nothing, tier
// two keeps every name that does not look like a title page, where names that
// also mention "index" are always kept.
func SelectChapterDocuments(names []string) ([]int, string) {
	var picked []int
	for i, name := range names {
		if strings.Contains(name, splitMarker) {
			picked = append(picked, i)
		}
	}
	if len(picked) > 0 {
		return picked, StrategyPreSplit
	}
	for i, name := range names {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, titleMarker) || strings.Contains(lower, indexMarker) {
			picked = append(picked, i)
		}
	}
	return picked, StrategySingleFile
}

// ExtractChapters selects chapter documents from c and flattens each to plain
// text. Documents are read in container order.
func ExtractChapters(c Container) (ChapterSet, error) {
	docs := c.Documents()
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.Name()
	}
	picked, strategy := SelectChapterDocuments(names)
	if len(picked) == 0 {
		return ChapterSet{}, &NoChaptersError{Book: bookName(c), Documents: len(docs)}
	}

	set := ChapterSet{Chapters: make([]Chapter, 0, len(picked)), Strategy: strategy}
	for _, idx := range picked {
		content, err := docs[idx].Content()
		if err != nil {
			return ChapterSet{}, fmt.Errorf("read chapter %s: %w", names[idx], err)
		}
		set.Chapters = append(set.Chapters, Chapter{
			Name: names[idx],
			Text: strings.Join(epub.Paragraphs(content), ParagraphSeparator),
		})
	}
	return set, nil
}

func bookName(c Container) string {
	if b, ok := c.(*epub.Book); ok && b.Path != "" {
		return b.Path
	}
	return "book"
}
