package markdown_test

import (
	"errors"
	"strings"
	"testing"

	"biochar/internal/platform/markdown"
)

type meta struct {
	ID       string  `yaml:"id"`
	OutputKg float64 `yaml:"output_kg"`
}

func TestNoteRoundTripsTypedFrontmatter(t *testing.T) {
	t.Parallel()
	note, err := markdown.Note(meta{ID: "b-1", OutputKg: 62.5}, "\n# Batch\n")
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if !strings.HasPrefix(string(note), "---\nid: b-1\n") {
		t.Fatalf("unexpected note %q", note)
	}
	var got meta
	body, err := markdown.Parse(note, &got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.ID != "b-1" || got.OutputKg != 62.5 {
		t.Fatalf("unexpected meta: %+v", got)
	}
	if body != "# Batch\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestParseRejectsNotesWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	var m meta
	if _, err := markdown.Parse([]byte("---\nid: x\n"), &m); !errors.Is(err, markdown.ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter for unterminated block, got %v", err)
	}
	if _, err := markdown.Parse([]byte("plain body"), &m); !errors.Is(err, markdown.ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter for plain text, got %v", err)
	}
}
