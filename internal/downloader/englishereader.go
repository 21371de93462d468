package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lingq_upload/internal/logging"
	"lingq_upload/internal/services"
)

// EnglishEReaderBaseURL is the site the provider scrapes.
const EnglishEReaderBaseURL = "https://english-e-reader.net"

// MetadataFileName is the sidecar written into every download directory.
const MetadataFileName = "metadata.json"

// SplitSuffix names the directory chapter audio is unpacked into.
const SplitSuffix = "_splitted"

const maxPageBytes = 4 << 20

// downloadFormats are fetched in this order.
var downloadFormats = []struct {
	format string
	ext    string
}{
	{"epub", ".epub"},
	{"mp3", ".mp3"},
	{"cue", ".cue"},
	{"mp3zip", ".zip"},
}

// EnglishEReaderOptions controls provider behaviour.
type EnglishEReaderOptions struct {
	BaseURL    string
	SkipUnzip  bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// EnglishEReaderProvider downloads books from english-e-reader.net.
type EnglishEReaderProvider struct {
	baseURL   string
	skipUnzip bool
	client    *http.Client
	logger    *slog.Logger
}

// StatusError reports a non-200 response from the site.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code %d", e.URL, e.StatusCode)
}

// NewEnglishEReaderProvider builds the provider with defaults filled in.
func NewEnglishEReaderProvider(opts EnglishEReaderOptions) *EnglishEReaderProvider {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = EnglishEReaderBaseURL
	}
	return &EnglishEReaderProvider{
		baseURL:   base,
		skipUnzip: opts.SkipUnzip,
		client:    client,
		logger:    logging.NewComponentLogger(opts.Logger, "english-e-reader"),
	}
}

func (p *EnglishEReaderProvider) Name() string { return "english-e-reader" }

// Match accepts site URLs, "book/<slug>" paths and bare slugs.
func (p *EnglishEReaderProvider) Match(input string) bool {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "english-e-reader.net") {
		return true
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return false
	}
	trimmed := strings.TrimPrefix(input, "/")
	if strings.HasPrefix(trimmed, "book/") {
		return true
	}
	return trimmed != "" && !strings.Contains(trimmed, "/")
}

// FetchMetadata scrapes the book page without downloading anything.
func (p *EnglishEReaderProvider) FetchMetadata(ctx context.Context, input string) (BookMetadata, error) {
	slug, err := ExtractSlug(input)
	if err != nil {
		return BookMetadata{}, err
	}
	page, err := p.fetchPage(ctx, slug)
	if err != nil {
		return BookMetadata{}, err
	}
	return page.meta, nil
}

// Download writes metadata.json and every available format into
// <outputRoot>/<slug>. Formats the page does not list, or that answer 404,
// are skipped.
func (p *EnglishEReaderProvider) Download(ctx context.Context, input string, outputRoot string) (*Result, error) {
	slug, err := ExtractSlug(input)
	if err != nil {
		return nil, err
	}
	logger := p.logger.With(logging.String("slug", slug))

	outputDir, err := filepath.Abs(filepath.Join(outputRoot, slug))
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	page, err := p.fetchPage(ctx, slug)
	if err != nil {
		return nil, err
	}

	metaPath := filepath.Join(outputDir, MetadataFileName)
	if err := writeJSON(metaPath, page.meta); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	result := &Result{
		Provider:     p.Name(),
		Slug:         slug,
		Title:        page.meta.Title,
		OutputDir:    outputDir,
		Files:        []string{metaPath},
		MetadataPath: metaPath,
	}

	for _, f := range downloadFormats {
		if len(page.formats) > 0 && !page.formats[f.format] {
			logger.Debug("format not listed on page; skipping", logging.String("format", f.format))
			result.Skipped = append(result.Skipped, f.format)
			continue
		}

		target := filepath.Join(outputDir, slug+f.ext)
		if err := p.downloadFile(ctx, slug, f.format, target); err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
				logger.Info("format unavailable; skipping", logging.String("format", f.format))
				result.Skipped = append(result.Skipped, f.format)
				continue
			}
			return nil, services.Wrap(services.ErrRemote, "download", "fetch "+f.format, slug, err)
		}
		result.Files = append(result.Files, target)
		logger.Info("format downloaded", logging.String("format", f.format), logging.String("path", target))

		if f.format == "mp3zip" && !p.skipUnzip {
			splitDir := filepath.Join(outputDir, slug+SplitSuffix)
			count, err := unzipArchive(target, splitDir)
			if err != nil {
				return nil, fmt.Errorf("unzip mp3 archive: %w", err)
			}
			result.Files = append(result.Files, splitDir)
			result.SplitDir = splitDir
			logger.Info("audio archive extracted", logging.String("dir", splitDir), logging.Int("files", count))
		}
	}

	return result, nil
}

// ExtractSlug reduces a URL, "book/<slug>" path or bare slug to the slug.
func ExtractSlug(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", services.Wrap(services.ErrValidation, "download", "parse input", "empty input", nil)
	}
	path := input
	if strings.HasPrefix(input, "http") {
		u, err := url.Parse(input)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "download", "parse url", input, err)
		}
		path = u.Path
	}
	slug := strings.Trim(strings.TrimPrefix(path, "/"), "/")
	slug = strings.Trim(strings.TrimPrefix(slug, "book/"), "/")
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return "", services.Wrap(services.ErrValidation, "download", "parse input", fmt.Sprintf("cannot determine slug from %q", input), nil)
	}
	return slug, nil
}

func (p *EnglishEReaderProvider) fetchPage(ctx context.Context, slug string) (bookPage, error) {
	pageURL := p.baseURL + "/book/" + url.PathEscape(slug)
	body, err := p.get(ctx, pageURL)
	if err != nil {
		return bookPage{}, services.Wrap(services.ErrRemote, "download", "fetch page", slug, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return bookPage{}, fmt.Errorf("read book page: %w", err)
	}
	page, err := parseBookPage(bytes.NewReader(data))
	if err != nil {
		return bookPage{}, fmt.Errorf("parse book page: %w", err)
	}
	return page, nil
}

func (p *EnglishEReaderProvider) downloadFile(ctx context.Context, slug, format, target string) error {
	query := url.Values{}
	query.Set("link", slug)
	query.Set("format", format)
	body, err := p.get(ctx, p.baseURL+"/download?"+query.Encode())
	if err != nil {
		return err
	}
	defer body.Close()

	tmp := target + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}

func (p *EnglishEReaderProvider) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
