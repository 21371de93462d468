package downloader

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"lingq_upload/internal/ingest"
	"lingq_upload/internal/textutil"
)

// UnknownLevel is recorded when the page shows no recognised CEFR label.
const UnknownLevel = "Unknown Level"

// BookMetadata is the metadata.json sidecar written next to a download.
type BookMetadata struct {
	Title       string   `json:"title"`
	Level       string   `json:"level"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// cefrLevels lists page labels in the order they are searched.
var cefrLevels = []struct {
	label string
	level string
}{
	{"A1 Starter", ingest.LevelBeginner1},
	{"A2 Elementary", ingest.LevelBeginner2},
	{"B1 Pre-Intermediate", ingest.LevelIntermediate1},
	{"B1+ Intermediate", ingest.LevelIntermediate1},
	{"B2 Intermediate-Plus", ingest.LevelIntermediate2},
	{"B2+ Upper-Intermediate", ingest.LevelIntermediate2},
	{"C1 Advanced", ingest.LevelAdvanced1},
	{"C2 Unabridged", ingest.LevelAdvanced2},
}

// MapLevel converts a CEFR page label to a LingQ level name.
func MapLevel(label string) string {
	label = strings.TrimSpace(label)
	for _, entry := range cefrLevels {
		if entry.label == label {
			return entry.level
		}
	}
	return UnknownLevel
}

// bookPage is what a book page yields once parsed.
type bookPage struct {
	meta    BookMetadata
	formats map[string]bool
}

// parseBookPage walks the page once, collecting the title, description,
// tag labels, level label and the download formats it links to.
func parseBookPage(r io.Reader) (bookPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return bookPage{}, err
	}

	page := bookPage{formats: map[string]bool{}}
	var (
		rawTitle string
		text     strings.Builder
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteByte(' ')
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Title:
				if rawTitle == "" {
					rawTitle = nodeText(n)
				}
			case atom.Meta:
				if attr(n, "property") == "og:description" && page.meta.Description == "" {
					page.meta.Description = strings.TrimSpace(attr(n, "content"))
				}
			case atom.Span:
				if hasClass(n, "label") && hasClass(n, "label-default") {
					if tag := textutil.CleanTag(nodeText(n)); tag != "" {
						page.meta.Tags = append(page.meta.Tags, tag)
					}
				}
			case atom.A:
				if format := downloadFormat(attr(n, "href")); format != "" {
					page.formats[format] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.meta.Title, page.meta.Author = splitPageTitle(rawTitle)
	page.meta.Level = findLevel(text.String())
	return page, nil
}

// splitPageTitle splits "Title - Author - Site" into its first two parts.
func splitPageTitle(raw string) (title, author string) {
	parts := strings.Split(strings.TrimSpace(raw), " - ")
	title = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		author = strings.TrimSpace(parts[1])
	}
	return title, author
}

func findLevel(pageText string) string {
	normalized := strings.Join(strings.Fields(pageText), " ")
	for _, entry := range cefrLevels {
		if strings.Contains(normalized, entry.label) {
			return entry.level
		}
	}
	return UnknownLevel
}

// downloadFormat extracts the format query value from a download link.
func downloadFormat(href string) string {
	if !strings.Contains(href, "download") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil || !strings.HasSuffix(u.Path, "/download") && u.Path != "download" {
		return ""
	}
	q := u.Query()
	if q.Get("link") == "" {
		return ""
	}
	return strings.ToLower(q.Get("format"))
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
