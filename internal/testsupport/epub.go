package testsupport

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// EPUBDocument is one XHTML manifest entry in a generated book.
type EPUBDocument struct {
	Name       string
	Paragraphs []string
}

// EPUBImage is one image manifest entry in a generated book.
type EPUBImage struct {
	Name string
	Data []byte
}

// EPUBBook describes a book for WriteEPUB.
type EPUBBook struct {
	Title     string
	Creator   string
	Documents []EPUBDocument
	Images    []EPUBImage
}

// WriteEPUB writes a minimal but valid EPUB container to path. Documents and
// images live under OEBPS/ and the manifest lists them in the given order,
// documents first.
func WriteEPUB(t testing.TB, path string, book EPUBBook) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	add("mimetype", []byte("application/epub+zip"))
	add("META-INF/container.xml", []byte(`<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`))

	var manifest, spine strings.Builder
	for i, doc := range book.Documents {
		id := fmt.Sprintf("doc%d", i+1)
		fmt.Fprintf(&manifest, "    <item id=%q href=%q media-type=\"application/xhtml+xml\"/>\n", id, doc.Name)
		fmt.Fprintf(&spine, "    <itemref idref=%q/>\n", id)

		var body strings.Builder
		for _, p := range doc.Paragraphs {
			fmt.Fprintf(&body, "<p>%s</p>\n", p)
		}
		add("OEBPS/"+doc.Name, []byte(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>`+doc.Name+`</title></head>
<body>
`+body.String()+`</body></html>`))
	}
	for i, img := range book.Images {
		mediaType := "image/jpeg"
		if strings.HasSuffix(strings.ToLower(img.Name), ".png") {
			mediaType = "image/png"
		}
		fmt.Fprintf(&manifest, "    <item id=\"img%d\" href=%q media-type=%q/>\n", i+1, img.Name, mediaType)
		add("OEBPS/"+img.Name, img.Data)
	}

	add("OEBPS/content.opf", []byte(`<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>`+book.Title+`</dc:title>
    <dc:creator>`+book.Creator+`</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
`+manifest.String()+`  </manifest>
  <spine>
`+spine.String()+`  </spine>
</package>`))

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}

// SplitChapters returns n pre-split chapter documents named like the output
// of common EPUB splitting tools.
func SplitChapters(n int) []EPUBDocument {
	docs := make([]EPUBDocument, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, EPUBDocument{
			Name:       fmt.Sprintf("index_split_%03d.html", i),
			Paragraphs: []string{fmt.Sprintf("Chapter %d opens.", i+1), fmt.Sprintf("Chapter %d closes.", i+1)},
		})
	}
	return docs
}
