// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package configurator

import (
	"context"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/dependency"

	"github.com/canonical/cloudflared-configurator/internal/reconciler"
)

// ManifoldConfig defines the configuration for the configurator
// manifold.
type ManifoldConfig struct {
	Facade          Facade
	Resolver        reconciler.Resolver
	Publisher       Publisher
	Clock           clock.Clock
	ApplicationName string

	NewWorker func(Config) (*Worker, error)
}

// Validate validates the manifold configuration.
func (cfg ManifoldConfig) Validate() error {
	if cfg.Facade == nil {
		return errors.NotValidf("nil Facade")
	}
	if cfg.Resolver == nil {
		return errors.NotValidf("nil Resolver")
	}
	if cfg.Publisher == nil {
		return errors.NotValidf("nil Publisher")
	}
	if cfg.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if cfg.ApplicationName == "" {
		return errors.NotValidf("empty ApplicationName")
	}
	if cfg.NewWorker == nil {
		return errors.NotValidf("nil NewWorker")
	}
	return nil
}

// Manifold returns a dependency manifold that runs the configurator
// worker.
func Manifold(config ManifoldConfig) dependency.Manifold {
	return dependency.Manifold{
		Start: func(ctx context.Context, getter dependency.Getter) (worker.Worker, error) {
			if err := config.Validate(); err != nil {
				return nil, errors.Trace(err)
			}
			w, err := config.NewWorker(Config{
				Facade:          config.Facade,
				Resolver:        config.Resolver,
				Publisher:       config.Publisher,
				Clock:           config.Clock,
				ApplicationName: config.ApplicationName,
			})
			if err != nil {
				return nil, errors.Trace(err)
			}
			return w, nil
		},
	}
}
