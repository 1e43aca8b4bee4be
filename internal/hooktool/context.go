// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooktool implements the action commands exposed by the
// configurator charm. Commands run against a Context that fronts the
// hook environment, so they can be exercised in tests without a live
// Juju model.
package hooktool

import (
	"context"

	"github.com/canonical/cloudflared-configurator/internal/relation/ingress"
)

// Context exposes the relation snapshots a hook command may read.
// Commands are read only; nothing here mutates model state.
type Context interface {
	// IngressRequests returns the requests of the connected ingress
	// peers, empty when no peer is related.
	IngressRequests(ctx context.Context) ([]ingress.Request, error)
}
