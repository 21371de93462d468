package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const containerPath = "META-INF/container.xml"

// ErrNotFound is returned when an archive entry referenced by the manifest is absent.
var ErrNotFound = errors.New("epub: entry not found")

// Book is an opened EPUB container. Close releases the underlying archive.
type Book struct {
	Path     string
	Title    string
	Creator  string
	Language string

	archive  *zip.ReadCloser
	opfPath  string
	manifest []Item
	spine    []string
}

// Item describes one manifest entry.
type Item struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// Document is a manifest item holding XHTML content.
type Document struct {
	book *Book
	item Item
	data []byte
}

// NewDocument returns a detached document with in-memory content.
func NewDocument(name string, content []byte) Document {
	return Document{
		item: Item{Href: name, MediaType: "application/xhtml+xml"},
		data: content,
	}
}

// Name returns the manifest href, relative to the package file.
func (d Document) Name() string { return d.item.Href }

// ID returns the manifest identifier.
func (d Document) ID() string { return d.item.ID }

// Content reads the raw document bytes from the archive.
func (d Document) Content() ([]byte, error) {
	if d.book == nil {
		return d.data, nil
	}
	return d.book.readEntry(d.item.Href)
}

// Open opens the EPUB at path and parses its package document.
func Open(filePath string) (*Book, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", filePath, err)
	}
	book := &Book{Path: filePath, archive: r}
	if err := book.load(); err != nil {
		r.Close()
		return nil, err
	}
	return book, nil
}

// Close releases the archive handle. It is safe to call more than once.
func (b *Book) Close() error {
	if b == nil || b.archive == nil {
		return nil
	}
	err := b.archive.Close()
	b.archive = nil
	return err
}

func (b *Book) load() error {
	data, err := readZipFile(b.archive.File, containerPath)
	if err != nil {
		return fmt.Errorf("epub: container.xml: %w", err)
	}
	rootfile, err := parseRootfile(data)
	if err != nil {
		return err
	}
	opfData, err := readZipFile(b.archive.File, rootfile)
	if err != nil {
		return fmt.Errorf("epub: package document %s: %w", rootfile, err)
	}
	pkg, err := parsePackage(opfData)
	if err != nil {
		return err
	}

	b.opfPath = rootfile
	b.Title = pkg.title()
	b.Creator = pkg.creator()
	b.Language = pkg.language()
	for _, item := range pkg.Manifest.Items {
		if strings.TrimSpace(item.Href) == "" {
			continue
		}
		b.manifest = append(b.manifest, Item{
			ID:         strings.TrimSpace(item.ID),
			Href:       strings.TrimSpace(item.Href),
			MediaType:  strings.ToLower(strings.TrimSpace(item.MediaType)),
			Properties: strings.TrimSpace(item.Properties),
		})
	}
	for _, ref := range pkg.Spine.ItemRefs {
		if id := strings.TrimSpace(ref.IDRef); id != "" {
			b.spine = append(b.spine, id)
		}
	}
	return nil
}

// Items returns a copy of the manifest in declaration order.
func (b *Book) Items() []Item {
	out := make([]Item, len(b.manifest))
	copy(out, b.manifest)
	return out
}

// Spine returns the ordered item IDs of the reading order.
func (b *Book) Spine() []string {
	out := make([]string, len(b.spine))
	copy(out, b.spine)
	return out
}

// Documents returns every XHTML manifest item in manifest order.
func (b *Book) Documents() []Document {
	docs := make([]Document, 0, len(b.manifest))
	for _, item := range b.manifest {
		if isDocument(item) {
			docs = append(docs, Document{book: b, item: item})
		}
	}
	return docs
}

func isDocument(item Item) bool {
	switch item.MediaType {
	case "application/xhtml+xml", "text/html":
		return true
	case "":
		ext := strings.ToLower(path.Ext(item.Href))
		return ext == ".xhtml" || ext == ".html" || ext == ".htm"
	default:
		return false
	}
}

func (b *Book) readEntry(href string) ([]byte, error) {
	if b.archive == nil {
		return nil, errors.New("epub: book is closed")
	}
	return readZipFile(b.archive.File, b.resolve(href))
}

func (b *Book) resolve(href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	dir := path.Dir(b.opfPath)
	if dir == "." || dir == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(dir, href))
}

// readZipFile reads the first entry whose name matches target (case-insensitive).
func readZipFile(files []*zip.File, target string) ([]byte, error) {
	target = strings.ToLower(path.Clean(target))
	for _, f := range files {
		if strings.ToLower(path.Clean(f.Name)) != target {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
}
