package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelgate/internal/batch"
	"reelgate/internal/config"
)

const userAgent = "Reelgate-Go/0.1.0"

// Service defines the notification surface exposed to batch processing.
type Service interface {
	NotifyBatchStarted(ctx context.Context, batchID string, count int) error
	NotifyBatchCompleted(ctx context.Context, batchID string, summary batch.Summary, duration time.Duration) error
	NotifyBatchCancelled(ctx context.Context, batchID string, cancelled int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When notifications are disabled or no topic is set, a noop implementation
// is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if !cfg.Notifications.Enabled || topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, batchID string, count int) error {
	data := payload{
		title:   "Reelgate - Batch Started",
		message: fmt.Sprintf("Started processing %s with %d scenes", batchID, count),
		tags:    []string{"reelgate", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, batchID string, summary batch.Summary, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if summary.Errors == 0 {
		title = "Reelgate - Batch Complete"
		message = fmt.Sprintf("%s complete: %d added, %d skipped in %s", batchID, summary.Added+summary.Searched, summary.Filtered+summary.Exists, durationText)
	} else {
		title = "Reelgate - Batch Complete (with errors)"
		message = fmt.Sprintf("%s complete: %d added, %d failed in %s", batchID, summary.Added+summary.Searched, summary.Errors, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reelgate", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCancelled(ctx context.Context, batchID string, cancelled int) error {
	data := payload{
		title:   "Reelgate - Batch Cancelled",
		message: fmt.Sprintf("%s cancelled with %d scenes left unprocessed", batchID, cancelled),
		tags:    []string{"reelgate", "batch", "cancelled"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Reelgate - Error",
		message:  builder.String(),
		tags:     []string{"reelgate", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reelgate - Test",
		message:  "Notification system test",
		tags:     []string{"reelgate", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
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

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, string, batch.Summary, time.Duration) error {
	return nil
}
func (noopService) NotifyBatchCancelled(context.Context, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
