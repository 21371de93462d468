package textutil

import (
	"strings"
	"testing"
)

func TestCleanTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  fiction ", "fiction"},
		{"&nbsp;romance&nbsp;", "romance"},
		{"rock &amp; roll", "rock & roll"},
		{"&amp;nbsp;", ""},
		{"&nbsp;&nbsp; ", ""},
		{"cafe\u0301", "caf\u00e9"},
	}
	for _, tc := range cases {
		if got := CleanTag(tc.in); got != tc.want {
			t.Fatalf("CleanTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanTagIsIdempotent(t *testing.T) {
	inputs := []string{"&amp;amp;", " a&nbsp;b ", "rock &amp; roll", "cafe\u0301", "plain"}
	for _, in := range inputs {
		once := CleanTag(in)
		if twice := CleanTag(once); twice != once {
			t.Fatalf("CleanTag not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTitleFromSlug(t *testing.T) {
	cases := map[string]string{
		"the-little-prince":   "The Little Prince",
		"alice_in-wonderland": "Alice In Wonderland",
		"":                    "",
		"---":                 "",
	}
	for in, want := range cases {
		if got := TitleFromSlug(in); got != want {
			t.Fatalf("TitleFromSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"/books/Alice In Wonderland": "books_alice_in_wonderland",
		"A  --  B":                   "a_--_b",
		"???":                        "unknown",
		"":                           "unknown",
	}
	for in, want := range cases {
		if got := SanitizeToken(in); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSourceKeyDistinguishesDirectories(t *testing.T) {
	a := SourceKey("/one/book")
	b := SourceKey("/two/book/")
	if a == b {
		t.Fatalf("expected distinct keys, both %q", a)
	}
	if a != SourceKey("/one/book/") {
		t.Fatal("expected trailing slash to be ignored")
	}
	if !strings.HasPrefix(a, "book-") || len(a) != len("book-")+8 {
		t.Fatalf("unexpected key %q", a)
	}
}
