package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", "",
	"&amp;", "&",
)

// StripEntities removes the HTML entity artifacts that leak into scraped
// metadata. Replacement repeats until the text is stable, so double-encoded
// input ("&amp;nbsp;") is fully cleaned and the function is idempotent.
func StripEntities(value string) string {
	for {
		next := entityReplacer.Replace(value)
		if next == value {
			return value
		}
		value = next
	}
}

// CleanTag strips entity artifacts and surrounding whitespace from a tag and
// returns it in Unicode NFC form. An empty result means the tag is unusable.
func CleanTag(tag string) string {
	cleaned := strings.TrimSpace(StripEntities(tag))
	return norm.NFC.String(cleaned)
}

// TitleFromSlug turns a URL slug such as "the-little-prince" into
// "The Little Prince".
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
