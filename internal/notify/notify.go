// Package notify delivers short scan and clean summaries to the user.
package notify

//go:generate mockgen -destination=./mocks/notify.go -package=mocks . Notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/rs/zerolog"
)

// Notifier sends a title and body somewhere a person will see it
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// ScanMessage builds the notification for a finished scan
func ScanMessage(report *engine.ScanReport) (title, body string) {
	title = "Scan Complete"
	if report == nil || report.TotalSize <= 0 {
		return title, "No old cache found"
	}
	return title, fmt.Sprintf("Found %s of cache older than %d days",
		progress.FormatBytes(report.TotalSize), report.Days)
}

// CleanMessage builds the notification for a finished clean
func CleanMessage(result *engine.CleanResult) (title, body string) {
	var freed int64
	if result != nil {
		freed = result.FreedBytes
	}
	return "Cache Cleaned!", fmt.Sprintf("Freed %s of disk space", progress.FormatBytes(freed))
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

// Notify logs title and body at info level
func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.logger.Info().Str("title", title).Msg(body)
	return nil
}

// WebhookNotifier posts notifications as JSON
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	now     func() time.Time
}

// NewWebhookNotifier creates a notifier posting to url
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

type webhookPayload struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Notify sends one POST request. Any non-2xx answer is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, title, body string) error {
	jsonData, err := json.Marshal(webhookPayload{
		Title:     title,
		Message:   body,
		Timestamp: n.now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Multi fans a notification out to several notifiers. Every notifier is
// tried; the failures are joined.
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
