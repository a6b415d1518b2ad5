package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	catalogdto "biochar/internal/modules/catalog/dto"
	identitydto "biochar/internal/modules/identity/dto"
	pyrolysisdto "biochar/internal/modules/pyrolysis/dto"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/ui/components"
	catalogview "biochar/internal/ui/views/catalog"
)

type fakeBatches struct {
	started []string
	endedID string
	photo   string
}

func (f *fakeBatches) Start(_ context.Context, actor identitydto.Actor, kilnID, biomassTypeID string, inputKg float64) (pyrolysisdto.StartOutput, error) {
	f.started = append(f.started, fmt.Sprintf("%s/%s/%s/%g", actor.CoordinatorID, kilnID, biomassTypeID, inputKg))
	return pyrolysisdto.StartOutput{Batch: pyrolysisdto.BatchOutput{ID: "b-1", KilnID: kilnID, Status: "in-progress", InputQuantity: inputKg}}, nil
}

func (f *fakeBatches) End(_ context.Context, _ identitydto.Actor, batchID string, outputKg float64, photoName string, _ []byte) (pyrolysisdto.EndOutput, error) {
	f.endedID = batchID
	f.photo = photoName
	return pyrolysisdto.EndOutput{Batch: pyrolysisdto.BatchOutput{ID: batchID, Status: "completed", OutputQuantity: outputKg}}, nil
}

func (f *fakeBatches) GetActive(context.Context, identitydto.Actor) (pyrolysisdto.BatchOutput, error) {
	return pyrolysisdto.BatchOutput{}, apperrors.ErrNoActiveBatch
}

func (f *fakeBatches) History(context.Context, identitydto.Actor, string) ([]pyrolysisdto.BatchOutput, error) {
	return nil, nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListKilns(context.Context, string) ([]catalogdto.KilnOutput, error) {
	return []catalogdto.KilnOutput{{ID: "k-1", Name: "North"}}, nil
}

func (fakeCatalog) ListBiomassTypes(context.Context) ([]catalogdto.BiomassTypeOutput, error) {
	return []catalogdto.BiomassTypeOutput{{ID: "bt-1", Name: "Rice husk"}}, nil
}

var coordinator = identitydto.Actor{UserID: "u-1", Name: "Cora", Role: "coordinator", CoordinatorID: "c-1"}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(catalogview.LoadedMsg{Kind: kindKilns, Entries: []catalogview.Entry{{ID: "k-1", Name: "North"}}})
	next, _ = next.Update(catalogview.LoadedMsg{Kind: kindBiomass, Entries: []catalogview.Entry{{ID: "bt-1", Name: "Rice husk"}}})
	return next.(Model)
}

func TestPaletteStartUsesSelectedKilnAndBiomass(t *testing.T) {
	t.Parallel()
	port := &fakeBatches{}
	m := loaded(t, NewModel(coordinator, port, fakeCatalog{}, nil))

	next, cmd := m.Update(components.PaletteSubmitMsg{Input: "batch:start 100"})
	if cmd == nil {
		t.Fatalf("expected start command, status %q", next.(Model).status)
	}
	msg, ok := cmd().(batchStartedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if len(port.started) != 1 || port.started[0] != "c-1/k-1/bt-1/100" {
		t.Fatalf("unexpected start calls %v", port.started)
	}

	after, _ := next.Update(msg)
	if !after.(Model).hasActive || !strings.Contains(after.(Model).status, "North") {
		t.Fatalf("expected active batch on North, got %+v", after.(Model).status)
	}
}

func TestPaletteEndTargetsActiveBatch(t *testing.T) {
	t.Parallel()
	port := &fakeBatches{}
	m := loaded(t, NewModel(coordinator, port, fakeCatalog{}, nil))
	m.hasActive = true
	m.active = pyrolysisdto.BatchOutput{ID: "b-7", Status: "in-progress"}

	photo := filepath.Join(t.TempDir(), "kiln.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	_, cmd := m.Update(components.PaletteSubmitMsg{Input: "batch:end 62 " + photo})
	if cmd == nil {
		t.Fatalf("expected end command")
	}
	if msg, ok := cmd().(batchEndedMsg); !ok || msg.err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if port.endedID != "b-7" || port.photo != "kiln.jpg" {
		t.Fatalf("unexpected end call id=%s photo=%s", port.endedID, port.photo)
	}
}

func TestPaletteEndReportsMissingPhoto(t *testing.T) {
	t.Parallel()
	m := loaded(t, NewModel(coordinator, &fakeBatches{}, fakeCatalog{}, nil))
	_, cmd := m.Update(components.PaletteSubmitMsg{Input: "batch:end 62 /does/not/exist.jpg"})
	msg := cmd().(batchEndedMsg)
	if msg.err == nil || !strings.Contains(describeError("end", msg.err), "rejected") {
		t.Fatalf("expected validation failure, got %v", msg.err)
	}
}

func TestAdminCannotRunLifecycleCommands(t *testing.T) {
	t.Parallel()
	port := &fakeBatches{}
	admin := identitydto.Actor{UserID: "u-0", Name: "Ada", Role: "admin"}
	m := loaded(t, NewModel(admin, port, fakeCatalog{}, nil))

	next, cmd := m.Update(components.PaletteSubmitMsg{Input: "batch:start k-1 bt-1 100"})
	if cmd != nil || len(port.started) != 0 {
		t.Fatalf("admin must not start batches")
	}
	if !strings.Contains(next.(Model).status, "only coordinators") {
		t.Fatalf("unexpected status %q", next.(Model).status)
	}
	for _, hint := range paletteHints(false) {
		if strings.HasPrefix(hint, "batch:start") || strings.HasPrefix(hint, "batch:end") {
			t.Fatalf("lifecycle hint %q offered to admin", hint)
		}
	}
	if m.keys.Start.Enabled() || m.keys.End.Enabled() {
		t.Fatalf("lifecycle keys enabled for admin")
	}
}

func TestDataChangeTriggersReload(t *testing.T) {
	t.Parallel()
	changes := make(chan struct{}, 1)
	m := NewModel(coordinator, &fakeBatches{}, fakeCatalog{}, changes)
	wait := m.waitForChange()
	changes <- struct{}{}
	if _, ok := wait().(dataChangedMsg); !ok {
		t.Fatalf("expected dataChangedMsg")
	}
	close(changes)
	if msg := m.waitForChange()(); msg != nil {
		t.Fatalf("expected nil after close, got %#v", msg)
	}
}
