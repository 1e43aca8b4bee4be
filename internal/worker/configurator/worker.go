// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package configurator runs one reconciliation pass per dispatched
// charm event and applies the outcome: publishing or clearing the
// cloudflared-route advertisement and ingress URL, and setting unit
// status. Passes never overlap; the worker processes one change
// notification at a time.
package configurator

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"
	"github.com/juju/worker/v4/catacomb"
	"github.com/kr/pretty"

	"github.com/canonical/cloudflared-configurator/core/status"
	"github.com/canonical/cloudflared-configurator/internal/reconciler"
	"github.com/canonical/cloudflared-configurator/internal/relation/route"
)

var logger = loggo.GetLogger("cloudflared-configurator.worker")

// clusterDNSHost is the service name resolved to discover the
// in-cluster DNS address substituted for an unset nameserver option.
const clusterDNSHost = route.DefaultNameserver

const (
	publishRetryAttempts = 3
	publishRetryDelay    = time.Second
)

// Facade provides the worker's view of the model: change
// notifications and state snapshots.
type Facade interface {
	// WatchChanges returns a channel that receives a value whenever
	// configuration, a related secret, or relation data changes.
	WatchChanges(ctx context.Context) (<-chan struct{}, error)

	// Snapshot captures the current configuration and relation state.
	Snapshot(ctx context.Context) (reconciler.Snapshot, error)

	// IsLeader reports whether this unit holds application leadership.
	IsLeader(ctx context.Context) (bool, error)
}

// Publisher applies a reconciliation result to the model.
type Publisher interface {
	// PublishRoute publishes the advertisement on the
	// cloudflared-route relation.
	PublishRoute(ctx context.Context, adv route.Advertisement) error

	// ClearRoute removes any previously published advertisement.
	ClearRoute(ctx context.Context) error

	// PublishIngressURL publishes the routed URL to the ingress
	// requirer.
	PublishIngressURL(ctx context.Context, url string) error

	// ClearIngressURL removes any previously published ingress URL.
	ClearIngressURL(ctx context.Context) error

	// SetStatus sets the unit workload status.
	SetStatus(ctx context.Context, info status.StatusInfo) error
}

// Config holds the dependencies of the configurator worker.
type Config struct {
	Facade    Facade
	Resolver  reconciler.Resolver
	Publisher Publisher
	Clock     clock.Clock

	// ApplicationName is this charm's application name, used in the
	// status message shown when a superfluous unit is added.
	ApplicationName string

	// LookupHost resolves a host name, defaulting to the system
	// resolver. Injected for tests.
	LookupHost func(ctx context.Context, host string) ([]string, error)
}

// Validate ensures that the config values are valid.
func (c Config) Validate() error {
	if c.Facade == nil {
		return errors.NotValidf("nil Facade")
	}
	if c.Resolver == nil {
		return errors.NotValidf("nil Resolver")
	}
	if c.Publisher == nil {
		return errors.NotValidf("nil Publisher")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.ApplicationName == "" {
		return errors.NotValidf("empty ApplicationName")
	}
	return nil
}

// Worker drives the reconciler from model change notifications.
type Worker struct {
	catacomb catacomb.Catacomb
	config   Config
}

// NewWorker creates a new configurator worker.
func NewWorker(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.LookupHost == nil {
		config.LookupHost = net.DefaultResolver.LookupHost
	}
	w := &Worker{config: config}
	if err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

// Kill implements worker.Worker.
func (w *Worker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait implements worker.Worker.
func (w *Worker) Wait() error {
	return w.catacomb.Wait()
}

func (w *Worker) loop() error {
	ctx, cancel := w.scopedContext()
	defer cancel()

	changes, err := w.config.Facade.WatchChanges(ctx)
	if err != nil {
		return errors.Annotate(err, "watching for changes")
	}
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case _, ok := <-changes:
			if !ok {
				return errors.New("change channel closed")
			}
			if err := w.reconcile(ctx); err != nil {
				return errors.Trace(err)
			}
		}
	}
}

// reconcile runs a single pass. Expected conditions (missing config,
// absent relations) surface as a Blocked status; only failures talking
// to the model are returned as errors, restarting the worker so the
// next event retries from scratch.
func (w *Worker) reconcile(ctx context.Context) error {
	leader, err := w.config.Facade.IsLeader(ctx)
	if err != nil {
		return errors.Annotate(err, "checking leadership")
	}
	if !leader {
		message := fmt.Sprintf(
			"this charm only supports a single unit, please remove the additional units "+
				"using `juju scale-application %s 1`", w.config.ApplicationName)
		return w.apply(ctx, reconciler.Result{
			Status: status.StatusInfo{Status: status.Blocked, Message: message},
		})
	}

	snap, err := w.config.Facade.Snapshot(ctx)
	if err != nil {
		return errors.Annotate(err, "capturing model snapshot")
	}
	if _, ok := snap.Config.Nameserver(); !ok {
		snap.ClusterDNS = w.lookupClusterDNS(ctx)
	}

	result := reconciler.Reconcile(ctx, w.config.Resolver, snap)
	if logger.IsTraceEnabled() {
		logger.Tracef("reconciled: %# v", pretty.Formatter(result))
	}
	return w.apply(ctx, result)
}

// lookupClusterDNS resolves the cluster DNS service address. Failures
// are tolerated; the advertisement then carries the service name
// itself.
func (w *Worker) lookupClusterDNS(ctx context.Context) string {
	addrs, err := w.config.LookupHost(ctx, clusterDNSHost)
	if err != nil || len(addrs) == 0 {
		logger.Debugf("cannot resolve %q: %v", clusterDNSHost, err)
		return ""
	}
	return addrs[0]
}

func (w *Worker) apply(ctx context.Context, result reconciler.Result) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return w.applyOnce(ctx, result)
		},
		Attempts:    publishRetryAttempts,
		Delay:       publishRetryDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       w.config.Clock,
		Stop:        w.catacomb.Dying(),
	})
	return errors.Annotate(err, "applying reconciliation result")
}

func (w *Worker) applyOnce(ctx context.Context, result reconciler.Result) error {
	pub := w.config.Publisher
	if result.Active() {
		if err := pub.PublishRoute(ctx, *result.Advertisement); err != nil {
			return errors.Trace(err)
		}
		if result.IngressURL != "" {
			if err := pub.PublishIngressURL(ctx, result.IngressURL); err != nil {
				return errors.Trace(err)
			}
		} else {
			if err := pub.ClearIngressURL(ctx); err != nil {
				return errors.Trace(err)
			}
		}
	} else {
		if err := pub.ClearRoute(ctx); err != nil {
			return errors.Trace(err)
		}
		if err := pub.ClearIngressURL(ctx); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(pub.SetStatus(ctx, result.Status))
}

func (w *Worker) scopedContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	return w.catacomb.Context(ctx), cancel
}
