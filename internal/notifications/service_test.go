package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelgate/internal/batch"
	"reelgate/internal/config"
	"reelgate/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyBatchStarted(context.Background(), "batch-1", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNewServiceReturnsNoopWhenDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call while disabled: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.Enabled = false
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "batch started",
			send: func(svc notifications.Service) error {
				return svc.NotifyBatchStarted(context.Background(), "batch-7", 4)
			},
			expectTitle:   "Reelgate - Batch Started",
			expectMessage: "Started processing batch-7 with 4 scenes",
			expectTags:    "reelgate,batch,started",
		},
		{
			name: "batch completed clean",
			send: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), "batch-7", batch.Summary{Added: 2, Filtered: 1}, 90*time.Second)
			},
			expectTitle:   "Reelgate - Batch Complete",
			expectMessage: "batch-7 complete: 2 added, 1 skipped in 1m30s",
			expectTags:    "reelgate,batch,completed",
		},
		{
			name: "batch completed with errors",
			send: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), "batch-7", batch.Summary{Added: 1, Errors: 2}, time.Second)
			},
			expectTitle:   "Reelgate - Batch Complete (with errors)",
			expectMessage: "batch-7 complete: 1 added, 2 failed in 1s",
			expectTags:    "reelgate,batch,completed",
		},
		{
			name: "batch cancelled",
			send: func(svc notifications.Service) error {
				return svc.NotifyBatchCancelled(context.Background(), "batch-7", 3)
			},
			expectTitle:   "Reelgate - Batch Cancelled",
			expectMessage: "batch-7 cancelled with 3 scenes left unprocessed",
			expectTags:    "reelgate,batch,cancelled",
		},
		{
			name: "error",
			send: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("connection refused"), "batch-7")
			},
			expectTitle:    "Reelgate - Error",
			expectMessage:  "Error with batch-7: connection refused",
			expectTags:     "reelgate,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.Enabled = true
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}
