package out

import (
	"context"

	"biochar/internal/modules/integration/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	Describe(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Deliver(ctx context.Context, manifest domain.Manifest, event domain.Event) (domain.Receipt, error)
}
