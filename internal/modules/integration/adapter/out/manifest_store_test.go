package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	integrationout "biochar/internal/modules/integration/adapter/out"
	"biochar/internal/modules/integration/domain"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := integrationout.NewFileManifestStore(filepath.Join(t.TempDir(), "integrations.toml"))
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	raw := `
[[integration]]
name = "registry"
version = "1.0.0"
binary = "bin/registry"
sha256 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
enabled = true
events = ["batch.completed"]

[[integration]]
name = "ledger"
version = "0.2.0"
binary = "/opt/ledger"
sha256 = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
events = ["batch.started", "batch.completed"]
`
	path := filepath.Join(base, "integrations.toml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write integrations.toml: %v", err)
	}
	manifests, err := integrationout.NewFileManifestStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("expected two manifests, got %d", len(manifests))
	}
	if want := filepath.Join(base, "bin", "registry"); manifests[0].Binary != want {
		t.Fatalf("unexpected binary path: %s", manifests[0].Binary)
	}
	if manifests[1].Binary != "/opt/ledger" || manifests[1].Enabled {
		t.Fatalf("unexpected second manifest %+v", manifests[1])
	}
	if !manifests[1].Subscribes(domain.EventBatchStarted) {
		t.Fatalf("expected ledger to subscribe to started events")
	}
}

func TestFileManifestStoreRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "integrations.toml")
	raw := "[[integration]]\nname = \"x\"\ncapabilities = [\"command\"]\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write integrations.toml: %v", err)
	}
	if _, err := integrationout.NewFileManifestStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
