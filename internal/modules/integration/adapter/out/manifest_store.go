package out

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"biochar/internal/modules/integration/domain"
	integrationout "biochar/internal/modules/integration/port/out"
)

type FileManifestStore struct {
	path string
}

// NewFileManifestStore reads [[integration]] tables from path. Relative
// binaries resolve against the file's directory.
func NewFileManifestStore(path string) integrationout.ManifestStore {
	return &FileManifestStore{path: path}
}

type manifestFile struct {
	Integrations []domain.Manifest `toml:"integration"`
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read integration manifests: %w", err)
	}
	var file manifestFile
	decoder := toml.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode integration manifests: %w", err)
	}
	base := filepath.Dir(s.path)
	manifests := file.Integrations
	if manifests == nil {
		manifests = []domain.Manifest{}
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(base, manifests[i].Binary))
		}
	}
	return manifests, nil
}
