package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BookTag is appended to every book collection's tag set.
const BookTag = "book"

// Collection holds the collection-level fields of a plan.
type Collection struct {
	Title       string
	Description string
	Level       string
	LevelCode   int
	Tags        []string
	Author      string
	SourceURL   string
}

// Lesson pairs one chapter body with its audio file.
type Lesson struct {
	Position  int
	Title     string
	Text      string
	Chapter   string
	AudioPath string
}

// UploadPlan is the finalized, ordered unit of work handed to the publisher.
type UploadPlan struct {
	Collection Collection
	Lessons    []Lesson
	CoverPath  string
	// EmbeddedCover names the EPUB manifest image used when no cover file
	// sits beside the book.
	EmbeddedCover string
	Strategy      string
	Assets        Assets

	coverExtracted bool
}

// Release removes the cover file extracted for this plan, if any. Covers
// found on disk by discovery are never touched.
func (p *UploadPlan) Release() error {
	if !p.coverExtracted || p.CoverPath == "" {
		return nil
	}
	err := os.Remove(p.CoverPath)
	p.CoverPath = ""
	p.coverExtracted = false
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove extracted cover: %w", err)
	}
	return nil
}

// BuildPlan reconciles chapters against audio files and resolves the
// collection fields. It performs no I/O.
func BuildPlan(meta Metadata, chapters ChapterSet, audio []string, coverPath string) (UploadPlan, error) {
	if chapters.Len() != len(audio) {
		return UploadPlan{}, &ChapterAudioMismatchError{Chapters: chapters.Len(), Audio: len(audio)}
	}

	lessons := make([]Lesson, 0, len(audio))
	for i, chapter := range chapters.Chapters {
		lessons = append(lessons, Lesson{
			Position:  i + 1,
			Title:     LessonTitle(audio[i]),
			Text:      chapter.Text,
			Chapter:   chapter.Name,
			AudioPath: audio[i],
		})
	}

	return UploadPlan{
		Collection: Collection{
			Title:       meta.Title,
			Description: meta.Description,
			Level:       meta.Level,
			LevelCode:   LevelCode(meta.Level),
			Tags:        WithBookTag(meta.Tags),
			Author:      meta.Author,
		},
		Lessons:   lessons,
		CoverPath: coverPath,
	}, nil
}

// LessonTitle derives a lesson title from an audio path: the file name up to
// its first dot.
func LessonTitle(audioPath string) string {
	base := filepath.Base(audioPath)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WithBookTag returns a copy of tags with BookTag appended once.
func WithBookTag(tags []string) []string {
	out := make([]string, 0, len(tags)+1)
	for _, tag := range tags {
		if tag == BookTag {
			continue
		}
		out = append(out, tag)
	}
	return append(out, BookTag)
}
