// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package reconciler derives the cloudflared-route advertisement to
// publish from the current charm configuration and relation
// snapshots. Reconcile is a pure function: it never writes relation
// data or status itself, so a pass can be re-run on every dispatched
// event without risk of publishing inconsistent state.
package reconciler

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/cloudflared-configurator/core/config"
	"github.com/canonical/cloudflared-configurator/core/secrets"
	"github.com/canonical/cloudflared-configurator/core/status"
	"github.com/canonical/cloudflared-configurator/internal/relation/ingress"
	"github.com/canonical/cloudflared-configurator/internal/relation/route"
)

var logger = loggo.GetLogger("cloudflared-configurator.reconciler")

// Blocked status messages, stable because operators and tests key off
// them.
const (
	blockedMissingToken  = "missing tunnel-token"
	blockedMissingDomain = "domain not configured"
	blockedWaitingRoute  = "waiting for cloudflared-route relation"
)

// Resolver resolves a secret reference into its current content. It
// is injected so tests can substitute fakes for the Juju secret
// backend.
type Resolver interface {
	// GetContent returns the latest revision of the referenced secret.
	GetContent(ctx context.Context, uri *secrets.URI) (secrets.SecretValue, error)
}

// Snapshot is everything a reconciliation pass may read, captured at
// dispatch time. Passes never share state; each one receives a fresh
// Snapshot.
type Snapshot struct {
	// Config is the validated charm configuration.
	Config config.Config

	// IngressPeers holds the requests of connected ingress requirers.
	// The relation is declared with limit 1, so there is at most one.
	IngressPeers []ingress.Request

	// RoutePeerConnected reports whether a cloudflared-route requirer
	// is related.
	RoutePeerConnected bool

	// ClusterDNS optionally carries the resolved in-cluster DNS
	// address, substituted when the nameserver option is unset. When
	// empty the route.DefaultNameserver service name is advertised.
	ClusterDNS string
}

// Result is the outcome of one reconciliation pass. The caller applies
// it: publishing or clearing relation data and setting unit status.
type Result struct {
	// Status is the workload status to set.
	Status status.StatusInfo

	// Advertisement is the route data to publish. It is nil whenever
	// Status is not Active, in which case previously published data
	// must be cleared.
	Advertisement *route.Advertisement

	// IngressURL is the URL to publish to the ingress requirer, empty
	// when none should be published.
	IngressURL string

	// Err carries the typed cause of a Blocked status, for logging.
	// It is never surfaced as a hook failure.
	Err error
}

// Active reports whether the pass produced a publishable result.
func (r Result) Active() bool {
	return r.Status.Status == status.Active
}

func blocked(message string, err error) Result {
	logger.Debugf("reconcile blocked: %s: %v", message, err)
	return Result{
		Status: status.StatusInfo{Status: status.Blocked, Message: message},
		Err:    err,
	}
}

// Reconcile computes the desired published state from snap. It is
// idempotent and side effect free; validation short-circuits in a
// deterministic order so the first problem found wins.
func Reconcile(ctx context.Context, resolver Resolver, snap Snapshot) Result {
	var token string
	uri, hasTokenRef := snap.Config.TunnelTokenSecret()
	if hasTokenRef {
		var err error
		token, err = resolveToken(ctx, resolver, uri)
		if err != nil {
			return blocked(blockedMissingToken, err)
		}
	}
	domain, ok := snap.Config.Domain()
	if !ok {
		return blocked(blockedMissingDomain, errors.Annotatef(ErrConfiguration, "no domain configured"))
	}
	if !hasTokenRef {
		return blocked(blockedMissingToken, errors.Annotatef(ErrConfiguration, "no tunnel-token configured"))
	}
	if !snap.RoutePeerConnected {
		return blocked(blockedWaitingRoute, errors.Annotatef(ErrRelationNotReady, "no cloudflared-route peer"))
	}

	nameserver, ok := snap.Config.Nameserver()
	if !ok {
		if nameserver = snap.ClusterDNS; nameserver == "" {
			nameserver = route.DefaultNameserver
		}
	}
	result := Result{
		Status: status.StatusInfo{Status: status.Active},
		Advertisement: &route.Advertisement{
			Domain:      domain,
			Nameserver:  nameserver,
			TunnelToken: token,
		},
	}
	if len(snap.IngressPeers) > 0 {
		result.IngressURL = ingress.URL(domain)
	}
	return result
}

func resolveToken(ctx context.Context, resolver Resolver, uri *secrets.URI) (string, error) {
	if resolver == nil {
		return "", errors.Annotatef(ErrSecretResolution, "no secret resolver available")
	}
	value, err := resolver.GetContent(ctx, uri)
	if err != nil {
		return "", errors.WithType(errors.Annotatef(err, "resolving secret %q", uri.String()), ErrSecretResolution)
	}
	token, err := value.KeyValue(secrets.TokenFieldName)
	if err != nil {
		return "", errors.WithType(
			errors.Annotatef(err, "missing %q in juju secret %s", secrets.TokenFieldName, uri.String()),
			ErrSecretResolution)
	}
	return token, nil
}

// Describe returns the current ingress requests for diagnostics. It
// never mutates relation data and returns an empty slice when no
// ingress peer is connected.
func Describe(snap Snapshot) []ingress.Request {
	return ingress.Describe(snap.IngressPeers)
}
