package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"chitfund/internal/adapters/docstore"
	schemeStore "chitfund/internal/adapters/storage/scheme"
	"chitfund/internal/domain/scheme"
)

// ErrNoSchemes is returned when a seed file lists nothing.
var ErrNoSchemes = errors.New("seed file has no schemes")

// SeedSchemesInput carries the raw YAML seed file:
//
//	schemes:
//	  - id: S1
//	    name: Gold 20 x 5000
type SeedSchemesInput struct {
	Data []byte
}

// SeedSchemesDeps holds dependencies for SeedSchemes.
type SeedSchemesDeps struct {
	Client docstore.Client
}

// ExecuteSeedSchemes writes every scheme of the seed file under its own id.
// Re-running replaces existing entries.
// POST: Returns the number of schemes written
func ExecuteSeedSchemes(ctx context.Context, input SeedSchemesInput, deps SeedSchemesDeps) (int, error) {
	var file struct {
		Schemes []scheme.Scheme `yaml:"schemes"`
	}
	if err := yaml.Unmarshal(input.Data, &file); err != nil {
		return 0, fmt.Errorf("decode schemes: %w", err)
	}
	if len(file.Schemes) == 0 {
		return 0, ErrNoSchemes
	}
	if err := schemeStore.Seed(ctx, deps.Client, file.Schemes); err != nil {
		return 0, err
	}
	slog.Info("schemes_seeded", "count", len(file.Schemes))
	return len(file.Schemes), nil
}
