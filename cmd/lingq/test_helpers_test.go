package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lingq_upload/internal/config"
	"lingq_upload/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	lingq      *fakeLingQ
}

// fakeLingQ answers the LingQ v3 endpoints used by the publisher and records
// every request as "METHOD /path".
type fakeLingQ struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []string
	nextID   int
	lessons  []int
}

func newFakeLingQ(t *testing.T) *fakeLingQ {
	t.Helper()
	f := &fakeLingQ{nextID: 100}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeLingQ) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/v3/en")
	f.requests = append(f.requests, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/lessons/"):
		results := make([]map[string]any, 0, len(f.lessons))
		for i, id := range f.lessons {
			results = append(results, map[string]any{"id": id, "title": fmt.Sprintf("L%d", i+1), "pos": i + 1})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(results), "next": nil, "results": results})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 0, "next": nil, "results": []any{}})
	case r.Method == http.MethodPost && (path == "/collections/" || path == "/lessons/" || path == "/lessons/import/"):
		f.nextID++
		if path != "/collections/" {
			f.lessons = append(f.lessons, f.nextID)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]int{"id": f.nextID})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeLingQ) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeLingQ) count(request string) int {
	n := 0
	for _, req := range f.recorded() {
		if req == request {
			n++
		}
	}
	return n
}

func (f *fakeLingQ) countPrefix(prefix string) int {
	n := 0
	for _, req := range f.recorded() {
		if strings.HasPrefix(req, prefix) {
			n++
		}
	}
	return n
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, name := range []string{"LINGQ_API_KEY", "APIKey", "LINGQ_LESSON_STATUS", "status", "LINGQ_NTFY_TOPIC"} {
		t.Setenv(name, "")
	}

	fake := newFakeLingQ(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(fake.server.URL))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		lingq:      fake,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--env-file", ""}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[lingq]
api_key = %q
base_url = %q
requests_per_second = 1000.0
source_url = %q

[downloader]
output_dir = %q
split_audio = false
`,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.LingQ.APIKey,
		cfg.LingQ.BaseURL,
		cfg.LingQ.SourceURL,
		cfg.Downloader.OutputDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeBook lays out a book directory with a sidecar, a pre-split EPUB and
// one chapter MP3 per document.
func writeBook(t *testing.T, root, name string, chapters int) string {
	t.Helper()
	dir := filepath.Join(root, name)
	testsupport.WriteText(t, filepath.Join(dir, "metadata.json"),
		`{"title":"The Book","level":"Beginner 2","tags":["fiction"],"author":"A. Writer"}`)
	testsupport.WriteEPUB(t, filepath.Join(dir, name+".epub"), testsupport.EPUBBook{
		Title:     "The Book",
		Documents: testsupport.SplitChapters(chapters),
	})
	for i := 1; i <= chapters; i++ {
		testsupport.WriteFile(t, filepath.Join(dir, fmt.Sprintf("%s-%02d.mp3", name, i)), 1024)
	}
	return dir
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
