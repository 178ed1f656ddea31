package config

import (
	"fmt"

	"github.com/cognicore/modgrammar/pkg/modgrammar/catalog"
	"github.com/cognicore/modgrammar/pkg/modgrammar/ingest"
	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

// Loader loads the inputs a run needs and constructs its components
type Loader struct {
	Config Config
}

// Components holds the loaded inputs
type Components struct {
	Catalog     *catalog.Catalog
	Eligibility ingest.Eligibility
}

// Load validates the configuration and reads the template catalog
func (l *Loader) Load() (*Components, error) {
	if err := l.Config.Validate(); err != nil {
		return nil, err
	}

	elig, err := l.Config.Eligibility.Resolve()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadFile(l.Config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("load catalog: %w: %s has no templates", internalerr.ErrInvalidInput, l.Config.Catalog)
	}

	return &Components{Catalog: cat, Eligibility: elig}, nil
}
