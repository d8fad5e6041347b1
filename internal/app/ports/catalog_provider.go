package ports

import (
	"context"

	"loopplanner/internal/domain/survival"
)

type CatalogProvider interface {
	Catalog(ctx context.Context) (survival.Catalog, error)
	Tuning(ctx context.Context) (survival.Tuning, error)
}
