package epub

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// Image is a manifest image entry.
type Image struct {
	book *Book
	item Item
}

// Name returns the manifest href of the image.
func (i Image) Name() string { return i.item.Href }

// Ext returns the file extension to use when the image is saved, without the dot.
func (i Image) Ext() string {
	switch strings.ToLower(path.Ext(i.item.Href)) {
	case ".jpg", ".jpeg":
		return "jpg"
	case ".png":
		return "png"
	}
	switch i.item.MediaType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	}
	return ""
}

// Content reads the image bytes.
func (i Image) Content() ([]byte, error) {
	return i.book.readEntry(i.item.Href)
}

// Cover returns the first JPEG or PNG image whose name contains "cover".
func (b *Book) Cover() (Image, bool) {
	for _, item := range b.manifest {
		if !strings.HasPrefix(item.MediaType, "image/") && item.MediaType != "" {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Href), "cover") {
			continue
		}
		img := Image{book: b, item: item}
		if img.Ext() == "" {
			continue
		}
		return img, true
	}
	return Image{}, false
}

// ExtractCover writes the cover image into dir under a fresh name of the form
// cover-*.jpg or cover-*.png and returns the written path. Existing files are
// never replaced. ok is false when the book has no usable cover.
func (b *Book) ExtractCover(dir string) (string, bool, error) {
	img, ok := b.Cover()
	if !ok {
		return "", false, nil
	}
	data, err := img.Content()
	if err != nil {
		return "", false, fmt.Errorf("epub: read cover %s: %w", img.Name(), err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("epub: create cover dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "cover-*."+img.Ext())
	if err != nil {
		return "", false, fmt.Errorf("epub: create cover: %w", err)
	}
	target := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", false, fmt.Errorf("epub: write cover: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", false, fmt.Errorf("epub: write cover: %w", err)
	}
	return target, true, nil
}
