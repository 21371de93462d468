package epub_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingq_upload/internal/epub"
	"lingq_upload/internal/testsupport"
)

func writeBook(t *testing.T, book testsupport.EPUBBook) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, path, book)
	return path
}

func TestOpenReadsMetadataAndManifestOrder(t *testing.T) {
	path := writeBook(t, testsupport.EPUBBook{
		Title:   "The Little Prince",
		Creator: "Antoine de Saint-Exupery",
		Documents: []testsupport.EPUBDocument{
			{Name: "titlepage.xhtml", Paragraphs: []string{"cover"}},
			{Name: "index_split_000.html", Paragraphs: []string{"one"}},
			{Name: "index_split_001.html", Paragraphs: []string{"two"}},
		},
	})

	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	if book.Title != "The Little Prince" || book.Creator != "Antoine de Saint-Exupery" {
		t.Fatalf("unexpected metadata: %q by %q", book.Title, book.Creator)
	}
	if book.Language != "en" {
		t.Fatalf("expected language en, got %q", book.Language)
	}

	docs := book.Documents()
	want := []string{"titlepage.xhtml", "index_split_000.html", "index_split_001.html"}
	if len(docs) != len(want) {
		t.Fatalf("expected %d documents, got %d", len(want), len(docs))
	}
	for i, doc := range docs {
		if doc.Name() != want[i] {
			t.Fatalf("document %d: expected %q, got %q", i, want[i], doc.Name())
		}
	}
	if spine := book.Spine(); len(spine) != 3 || spine[0] != "doc1" {
		t.Fatalf("unexpected spine: %v", spine)
	}
}

func TestDocumentContentAndParagraphs(t *testing.T) {
	path := writeBook(t, testsupport.EPUBBook{
		Title: "T",
		Documents: []testsupport.EPUBDocument{
			{Name: "index_split_000.html", Paragraphs: []string{"First <em>bold</em> line.", "Second line."}},
		},
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	content, err := book.Documents()[0].Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	paragraphs := epub.Paragraphs(content)
	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %v", paragraphs)
	}
	if paragraphs[0] != "First bold line." || paragraphs[1] != "Second line." {
		t.Fatalf("unexpected paragraphs: %q", paragraphs)
	}
}

func TestParagraphsIgnoresNonParagraphText(t *testing.T) {
	content := []byte(`<html><body><h1>Heading</h1><div>loose</div><p>kept</p><p></p></body></html>`)
	got := epub.Paragraphs(content)
	if len(got) != 2 || got[0] != "kept" || got[1] != "" {
		t.Fatalf("unexpected paragraphs: %q", got)
	}
}

func TestContentAfterCloseFails(t *testing.T) {
	path := writeBook(t, testsupport.EPUBBook{
		Title:     "T",
		Documents: testsupport.SplitChapters(1),
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	docs := book.Documents()
	if err := book.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := book.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := docs[0].Content(); err == nil {
		t.Fatal("expected error reading from closed book")
	}
}

func TestOpenRejectsArchiveWithoutContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.epub")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := epub.Open(path); err == nil {
		t.Fatal("expected error for non-zip file")
	}
}

func TestCoverExtraction(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	path := writeBook(t, testsupport.EPUBBook{
		Title:     "T",
		Documents: testsupport.SplitChapters(1),
		Images: []testsupport.EPUBImage{
			{Name: "images/figure1.png", Data: []byte("png")},
			{Name: "images/Cover.jpeg", Data: jpeg},
		},
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	img, ok := book.Cover()
	if !ok {
		t.Fatal("expected cover image")
	}
	if img.Name() != "images/Cover.jpeg" || img.Ext() != "jpg" {
		t.Fatalf("unexpected cover %q (%s)", img.Name(), img.Ext())
	}

	dir := t.TempDir()
	written, ok, err := book.ExtractCover(dir)
	if err != nil || !ok {
		t.Fatalf("ExtractCover: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(written) != dir || !strings.HasPrefix(filepath.Base(written), "cover-") || filepath.Ext(written) != ".jpg" {
		t.Fatalf("unexpected cover path %q", written)
	}
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read cover: %v", err)
	}
	if !bytes.Equal(data, jpeg) {
		t.Fatalf("cover bytes differ: %v", data)
	}
}

func TestExtractCoverKeepsExistingFiles(t *testing.T) {
	path := writeBook(t, testsupport.EPUBBook{
		Title:     "T",
		Documents: testsupport.SplitChapters(1),
		Images:    []testsupport.EPUBImage{{Name: "cover.jpg", Data: []byte("epub-cover")}},
	})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(existing, []byte("user-cover"), 0o644); err != nil {
		t.Fatalf("write existing cover: %v", err)
	}
	written, ok, err := book.ExtractCover(dir)
	if err != nil || !ok {
		t.Fatalf("ExtractCover: ok=%v err=%v", ok, err)
	}
	if written == existing {
		t.Fatalf("extraction reused %q", existing)
	}
	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read existing cover: %v", err)
	}
	if string(data) != "user-cover" {
		t.Fatalf("existing cover replaced with %q", data)
	}
}

func TestExtractCoverWithoutCover(t *testing.T) {
	path := writeBook(t, testsupport.EPUBBook{Title: "T", Documents: testsupport.SplitChapters(1)})
	book, err := epub.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	_, ok, err := book.ExtractCover(t.TempDir())
	if err != nil || ok {
		t.Fatalf("expected no cover, got ok=%v err=%v", ok, err)
	}
}

func TestNewDocumentServesInlineContent(t *testing.T) {
	doc := epub.NewDocument("chapter.xhtml", []byte("<p>inline</p>"))
	if doc.Name() != "chapter.xhtml" {
		t.Fatalf("unexpected name %q", doc.Name())
	}
	content, err := doc.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if got := epub.Paragraphs(content); len(got) != 1 || got[0] != "inline" {
		t.Fatalf("unexpected paragraphs %q", got)
	}
}
