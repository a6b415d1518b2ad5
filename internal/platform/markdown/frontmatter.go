// Package markdown reads and writes notes made of a YAML frontmatter block
// followed by a markdown body.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

var ErrNoFrontmatter = errors.New("note has no frontmatter")

// Note renders meta (any yaml-encodable value) as frontmatter above body.
func Note(meta any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fence + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString(fence + "\n\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	return buf.Bytes(), nil
}

// Parse decodes the frontmatter of note into meta and returns the body.
func Parse(note []byte, meta any) (string, error) {
	text := string(note)
	head, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimSpace(head) != fence {
		return "", ErrNoFrontmatter
	}
	end := strings.Index(rest, "\n"+fence+"\n")
	if end < 0 {
		return "", fmt.Errorf("%w: missing closing fence", ErrNoFrontmatter)
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), meta); err != nil {
		return "", fmt.Errorf("decode frontmatter: %w", err)
	}
	return strings.TrimLeft(rest[end+len(fence)+2:], "\n"), nil
}
