package out

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rsc.io/pdf"

	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/platform/slug"
)

const maxEvidenceBytes = 25 << 20

var evidenceExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// FileBlobStore keeps evidence under <root>/<owner>/. Files are named by
// content hash, so uploading the same photo twice yields the same ref.
type FileBlobStore struct {
	root string
}

func NewFileBlobStore(root string) pyrolysisout.BlobStore {
	return &FileBlobStore{root: root}
}

func (s *FileBlobStore) Upload(_ context.Context, ownerID, filename string, data []byte) (string, error) {
	owner := slug.Make(ownerID)
	if strings.TrimSpace(ownerID) == "" {
		return "", fmt.Errorf("%w: owner is required", apperrors.ErrUpload)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", apperrors.ErrUpload)
	}
	if len(data) > maxEvidenceBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", apperrors.ErrUpload, filename, maxEvidenceBytes)
	}
	contentType := http.DetectContentType(data)
	ext, ok := evidenceExt[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %s", apperrors.ErrUpload, contentType)
	}
	if contentType == "application/pdf" {
		if err := checkPDF(data); err != nil {
			return "", err
		}
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:8]) + "-" + slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))) + ext
	ref := owner + "/" + name
	dir := filepath.Join(s.root, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create evidence dir: %w", apperrors.ErrUpload, err)
	}
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		return ref, nil
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", apperrors.ErrUpload, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: write evidence: %w", apperrors.ErrUpload, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close evidence: %w", apperrors.ErrUpload, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("%w: store evidence: %w", apperrors.ErrUpload, err)
	}
	return ref, nil
}

func checkPDF(data []byte) (err error) {
	// rsc.io/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", apperrors.ErrUpload, r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: read pdf: %w", apperrors.ErrUpload, err)
	}
	if doc.NumPage() < 1 {
		return fmt.Errorf("%w: pdf has no pages", apperrors.ErrUpload)
	}
	return nil
}
