package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lingq_upload/internal/config"
)

const userAgent = "lingq-upload/0.1.0"

// Event identifies a notification that the pipeline can publish.
type Event string

const (
	EventUploadCompleted   Event = "upload_completed"
	EventUploadFailed      Event = "upload_failed"
	EventDownloadCompleted Event = "download_completed"
	EventTestNotification  Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes pipeline events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		uploads:  cfg.Notifications.Uploads,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	uploads  bool
	errors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventUploadCompleted:
		if !n.uploads {
			return message{}, false
		}
		title := payload.text("title")
		body := fmt.Sprintf("📚 Uploaded: %s", title)
		if lessons := payload.number("lessons"); lessons > 0 {
			body = fmt.Sprintf("%s (%d lessons)", body, lessons)
		}
		if id := payload.number("collectionID"); id > 0 {
			body = fmt.Sprintf("%s\nCollection: %d", body, id)
		}
		return message{
			title: "LingQ - Upload Complete",
			body:  body,
			tags:  []string{"lingq", "upload", "completed"},
		}, true
	case EventDownloadCompleted:
		if !n.uploads {
			return message{}, false
		}
		return message{
			title: "LingQ - Download Complete",
			body:  fmt.Sprintf("📥 Downloaded: %s", payload.text("title")),
			tags:  []string{"lingq", "download", "completed"},
		}, true
	case EventUploadFailed:
		if !n.errors {
			return message{}, false
		}
		var builder strings.Builder
		builder.WriteString("❌ Upload failed")
		if title := payload.text("title"); title != "" {
			builder.WriteString(" for ")
			builder.WriteString(title)
		}
		builder.WriteString(": ")
		if detail := payload.text("error"); detail != "" {
			builder.WriteString(detail)
		} else {
			builder.WriteString("unknown")
		}
		if id := payload.number("collectionID"); id > 0 {
			fmt.Fprintf(&builder, "\nCollection: %d", id)
		}
		return message{
			title:    "LingQ - Error",
			body:     builder.String(),
			tags:     []string{"lingq", "error", "alert"},
			priority: "high",
		}, true
	case EventTestNotification:
		return message{
			title:    "LingQ - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"lingq", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (p Payload) number(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

// NewNoop returns a Service that drops every event.
func NewNoop() Service { return noopService{} }
