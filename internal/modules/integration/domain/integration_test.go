package domain_test

import (
	"testing"
	"time"

	"biochar/internal/modules/integration/domain"
)

const sha = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	completed := []domain.EventKind{domain.EventBatchCompleted}
	cases := []struct {
		name      string
		manifest  domain.Manifest
		shouldErr bool
	}{
		{name: "valid", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha, Enabled: true, Events: completed}},
		{name: "missing name", manifest: domain.Manifest{Version: "1", Binary: "/tmp/r", SHA256: sha, Events: completed}, shouldErr: true},
		{name: "missing version", manifest: domain.Manifest{Name: "r", Binary: "/tmp/r", SHA256: sha, Events: completed}, shouldErr: true},
		{name: "missing binary", manifest: domain.Manifest{Name: "r", Version: "1", SHA256: sha, Events: completed}, shouldErr: true},
		{name: "uppercase sha", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: "AA", Events: completed}, shouldErr: true},
		{name: "no events", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha}, shouldErr: true},
		{name: "unknown event", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha, Events: []domain.EventKind{"batch.paused"}}, shouldErr: true},
		{name: "duplicate event", manifest: domain.Manifest{Name: "r", Version: "1", Binary: "/tmp/r", SHA256: sha, Events: []domain.EventKind{domain.EventBatchStarted, domain.EventBatchStarted}}, shouldErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestSubscribesAndEventValidate(t *testing.T) {
	t.Parallel()
	m := domain.Manifest{Events: []domain.EventKind{domain.EventBatchCompleted}}
	if !m.Subscribes(domain.EventBatchCompleted) || m.Subscribes(domain.EventBatchStarted) {
		t.Fatalf("unexpected subscriptions")
	}
	started := domain.Event{Kind: domain.EventBatchStarted, Batch: domain.BatchSnapshot{ID: "b1"}}
	if err := started.Validate(); err != nil {
		t.Fatalf("started event: %v", err)
	}
	completed := domain.Event{Kind: domain.EventBatchCompleted, Batch: domain.BatchSnapshot{ID: "b1"}}
	if err := completed.Validate(); err == nil {
		t.Fatalf("completed event without end time should fail")
	}
	completed.Batch.EndTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := completed.Validate(); err != nil {
		t.Fatalf("completed event: %v", err)
	}
}
