package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SanitizeToken lowercases value and folds each run of characters outside
// [a-z0-9_-] into a single underscore. Empty results become "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			pendingSep = true
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// SourceKey names per-directory state files such as upload locks. Two
// directories with the same base name get different keys.
func SourceKey(dir string) string {
	clean := filepath.Clean(strings.TrimSpace(dir))
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+clean)).String()
	return SanitizeToken(filepath.Base(clean)) + "-" + id[:8]
}
