package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	"biochar/internal/platform/markdown"
	"biochar/internal/platform/slug"
)

const journalSchemaVersion = 1

// JournalMeta is the frontmatter of a batch journal note.
type JournalMeta struct {
	SchemaVersion int       `yaml:"schema_version"`
	ID            string    `yaml:"id"`
	CoordinatorID string    `yaml:"coordinator_id"`
	KilnID        string    `yaml:"kiln_id"`
	BiomassTypeID string    `yaml:"biomass_type_id"`
	Status        string    `yaml:"status"`
	StartTime     time.Time `yaml:"start_time"`
	EndTime       time.Time `yaml:"end_time"`
	InputKg       float64   `yaml:"input_kg"`
	OutputKg      float64   `yaml:"output_kg"`
	PhotoRef      string    `yaml:"photo_ref"`
}

// MarkdownJournal writes one note per completed batch under
// <root>/YYYY/MM/DD/.
type MarkdownJournal struct {
	root string
}

func NewMarkdownJournal(root string) pyrolysisout.Journal {
	return &MarkdownJournal{root: root}
}

func (j *MarkdownJournal) Write(_ context.Context, entry domain.JournalEntry) (string, error) {
	batch := entry.Batch
	date := batch.StartTime.UTC()
	dir := filepath.Join(j.root, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(entry.KilnName), shortID(batch.ID))
	path := filepath.Join(dir, name)

	duration := batch.EndTime.Sub(batch.StartTime).Round(time.Minute)
	meta := JournalMeta{
		SchemaVersion: journalSchemaVersion,
		ID:            batch.ID,
		CoordinatorID: batch.CoordinatorID,
		KilnID:        batch.KilnID,
		BiomassTypeID: batch.BiomassTypeID,
		Status:        string(batch.Status()),
		StartTime:     batch.StartTime.UTC(),
		EndTime:       batch.EndTime.UTC(),
		InputKg:       batch.InputQuantity,
		OutputKg:      batch.OutputQuantity,
		PhotoRef:      batch.PhotoRef,
	}
	coordinator := entry.CoordinatorName
	if coordinator == "" {
		coordinator = batch.CoordinatorID
	}
	body := fmt.Sprintf("# Batch %s\n\n- Kiln: %s\n- Biomass: %s\n- Coordinator: %s\n- Duration: %s\n\n## Quantities\n\n| Input (kg) | Output (kg) | Yield |\n|---|---|---|\n| %.2f | %.2f | %.1f%% |\n\n## Evidence\n\n`%s`\n",
		batch.ID, entry.KilnName, entry.BiomassName, coordinator, duration,
		batch.InputQuantity, batch.OutputQuantity, batch.Yield(), batch.PhotoRef)
	note, err := markdown.Note(meta, body)
	if err != nil {
		return "", err
	}
	if err := writeExclusive(path, note); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

// shortID keeps journal names readable while separating batches that share
// a kiln name and start second.
func shortID(id string) string {
	s := slug.Make(id)
	if len(s) > 8 {
		s = strings.TrimRight(s[:8], "-")
	}
	return s
}

// writeExclusive refuses to replace an existing note.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
