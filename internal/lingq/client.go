package lingq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://www.lingq.com"
	DefaultLanguage  = "en"
	DefaultUserAgent = "lingq-upload/0.1.0"
	defaultTimeout   = 120 * time.Second
	maxDiagnostic    = 512
)

// HTTPDoer describes the HTTP client used by the LingQ client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Token    string
	Language string
	// UserAgent is sent on every request.
	UserAgent string
	// RequestsPerSecond paces calls; zero or negative disables pacing.
	RequestsPerSecond float64
	HTTPClient        HTTPDoer
}

// Client talks to the LingQ v3 API for a single content language.
type Client struct {
	baseURL   string
	auth      string
	language  string
	userAgent string
	http      HTTPDoer
	limiter   *rate.Limiter
}

// New constructs a client. The token is required.
func New(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, fmt.Errorf("lingq: api token is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("lingq: invalid base url: %w", err)
	}
	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		baseURL:   base,
		auth:      AuthorizationHeader(token),
		language:  lang,
		userAgent: ua,
		http:      client,
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

// AuthorizationHeader formats a token for the Authorization header. Values
// that already carry a scheme ("Token abc", "Bearer abc") are kept as given.
func AuthorizationHeader(token string) string {
	token = strings.TrimSpace(token)
	if strings.Contains(token, " ") {
		return token
	}
	return "Token " + token
}

// Language returns the content language the client targets.
func (c *Client) Language() string { return c.language }

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/api/v3/%s/%s", c.baseURL, c.language, strings.TrimLeft(path, "/"))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, target any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Failed{Operation: op, Diagnostic: "encode request", Err: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return &Failed{Operation: op, Diagnostic: "build request", Err: err}
	}
	return c.do(op, req, target)
}

func (c *Client) do(op string, req *http.Request, target any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return &Failed{Operation: op, Diagnostic: "rate limiter", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Failed{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failed{Operation: op, StatusCode: resp.StatusCode, Diagnostic: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Failed{Operation: op, StatusCode: resp.StatusCode, Diagnostic: diagnostic(data)}
	}
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &Failed{Operation: op, StatusCode: resp.StatusCode, Diagnostic: "decode response: " + diagnostic(data), Err: err}
	}
	return nil
}

func diagnostic(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxDiagnostic {
		return text
	}
	cut := maxDiagnostic
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
