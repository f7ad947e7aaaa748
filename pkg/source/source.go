// Package source collects raw video rows from upstream providers.
// Collectors emit rows keyed by the canonical column names; all
// normalization and validation happens downstream in the loader.
package source

import (
	"context"

	"github.com/pcranston/tubepulse/pkg/video"
)

// Source fetches raw video rows for one channel.
type Source interface {
	// Name identifies the collector in logs and errors.
	Name() string

	// Fetch retrieves the channel's recent videos as raw rows. Fields a
	// provider cannot supply are simply absent from the row.
	Fetch(ctx context.Context) ([]video.RawRow, error)
}
