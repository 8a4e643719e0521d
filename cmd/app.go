package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/lotcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/lotcataloger/internal/cataloging"
	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
)

// newService opens the catalog store and builds the generation service.
// The caller closes the returned store.
func newService(cfg *config.Config, provider providers.Provider) (*cataloging.Service, catalog.Store, error) {
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if provider == nil {
		provider, err = cataloging.NewProvider(cfg.Generation.Provider)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
	}

	svc, err := cataloging.NewService(cfg, store, provider)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}
