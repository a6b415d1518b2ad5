package out_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pyrolysisout "biochar/internal/modules/pyrolysis/adapter/out"
	apperrors "biochar/internal/platform/errors"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake image body")

// minimalPDF builds a one-object-per-line PDF with a valid xref table.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	offsets := []int{}
	buf.WriteString("%PDF-1.4\n")
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	kids := []string{}
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 10 10] >>")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestFileBlobStoreStoresImagesByContent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := pyrolysisout.NewFileBlobStore(root)

	ref, err := store.Upload(context.Background(), "north", "Kiln Photo.PNG", pngBytes)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(ref, "north/") || !strings.HasSuffix(ref, "-kiln-photo.png") {
		t.Fatalf("unexpected ref %s", ref)
	}
	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref)))
	if err != nil || !bytes.Equal(stored, pngBytes) {
		t.Fatalf("stored file mismatch: %v", err)
	}
	again, err := store.Upload(context.Background(), "north", "Kiln Photo.PNG", pngBytes)
	if err != nil || again != ref {
		t.Fatalf("same photo should map to same ref, got %s %v", again, err)
	}
}

func TestFileBlobStoreValidatesPDFEvidence(t *testing.T) {
	t.Parallel()
	store := pyrolysisout.NewFileBlobStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.Upload(ctx, "north", "weighbridge.pdf", minimalPDF(1))
	if err != nil {
		t.Fatalf("upload pdf: %v", err)
	}
	if !strings.HasSuffix(ref, ".pdf") {
		t.Fatalf("unexpected pdf ref %s", ref)
	}
	if _, err := store.Upload(ctx, "north", "empty.pdf", minimalPDF(0)); !errors.Is(err, apperrors.ErrUpload) {
		t.Fatalf("zero-page pdf should fail upload, got %v", err)
	}
	if _, err := store.Upload(ctx, "north", "broken.pdf", []byte("%PDF-1.4\nnot really a pdf")); !errors.Is(err, apperrors.ErrUpload) {
		t.Fatalf("malformed pdf should fail upload, got %v", err)
	}
}

func TestFileBlobStoreRejectsUnsupportedContent(t *testing.T) {
	t.Parallel()
	store := pyrolysisout.NewFileBlobStore(t.TempDir())
	ctx := context.Background()
	if _, err := store.Upload(ctx, "north", "notes.txt", []byte("plain text")); !errors.Is(err, apperrors.ErrUpload) {
		t.Fatalf("text should be rejected, got %v", err)
	}
	if _, err := store.Upload(ctx, "north", "empty.jpg", nil); !errors.Is(err, apperrors.ErrUpload) {
		t.Fatalf("empty upload should be rejected, got %v", err)
	}
	if _, err := store.Upload(ctx, "", "p.png", pngBytes); !errors.Is(err, apperrors.ErrUpload) {
		t.Fatalf("missing owner should be rejected, got %v", err)
	}
}
