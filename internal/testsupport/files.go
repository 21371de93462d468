package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with exactly size bytes. The first bytes carry a
// repeating pattern; anything beyond that is a sparse extension, so large
// fixtures (e.g. unsplit recordings over the audio threshold) stay cheap.
// A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 4 * 1024
	head := size
	if head > chunkSize {
		head = chunkSize
	}
	buf := make([]byte, head)
	for i := range buf {
		buf[i] = 0x42
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if size > head {
		if err := f.Truncate(size); err != nil {
			t.Fatalf("extend %s: %v", path, err)
		}
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
