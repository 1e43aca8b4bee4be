// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package configurator_test

import (
	"context"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/canonical/cloudflared-configurator/internal/worker/configurator"
)

type ManifoldSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&ManifoldSuite{})

func (s *ManifoldSuite) validConfig() configurator.ManifoldConfig {
	return configurator.ManifoldConfig{
		Facade:          &fakeFacade{changes: make(chan struct{})},
		Resolver:        &fakeResolver{},
		Publisher:       newFakePublisher(),
		Clock:           testclock.NewDilatedWallClock(time.Millisecond),
		ApplicationName: "cloudflare-configurator",
		NewWorker:       configurator.NewWorker,
	}
}

func (s *ManifoldSuite) TestValidate(c *gc.C) {
	cfg := s.validConfig()
	c.Check(cfg.Validate(), jc.ErrorIsNil)

	cfg = s.validConfig()
	cfg.Facade = nil
	c.Check(cfg.Validate(), gc.ErrorMatches, "nil Facade not valid")

	cfg = s.validConfig()
	cfg.Resolver = nil
	c.Check(cfg.Validate(), gc.ErrorMatches, "nil Resolver not valid")

	cfg = s.validConfig()
	cfg.Publisher = nil
	c.Check(cfg.Validate(), gc.ErrorMatches, "nil Publisher not valid")

	cfg = s.validConfig()
	cfg.Clock = nil
	c.Check(cfg.Validate(), gc.ErrorMatches, "nil Clock not valid")

	cfg = s.validConfig()
	cfg.ApplicationName = ""
	c.Check(cfg.Validate(), gc.ErrorMatches, "empty ApplicationName not valid")

	cfg = s.validConfig()
	cfg.NewWorker = nil
	c.Check(cfg.Validate(), gc.ErrorMatches, "nil NewWorker not valid")
}

func (s *ManifoldSuite) TestStart(c *gc.C) {
	cfg := s.validConfig()
	var gotConfig configurator.Config
	cfg.NewWorker = func(wc configurator.Config) (*configurator.Worker, error) {
		gotConfig = wc
		return configurator.NewWorker(wc)
	}

	w, err := configurator.Manifold(cfg).Start(context.Background(), nil)
	c.Assert(err, jc.ErrorIsNil)
	workertest.CleanKill(c, w)

	c.Check(gotConfig.ApplicationName, gc.Equals, "cloudflare-configurator")
	c.Check(gotConfig.Facade, gc.Equals, cfg.Facade)
	c.Check(gotConfig.Publisher, gc.Equals, cfg.Publisher)
}

func (s *ManifoldSuite) TestStartValidateError(c *gc.C) {
	cfg := s.validConfig()
	cfg.Facade = nil
	w, err := configurator.Manifold(cfg).Start(context.Background(), nil)
	c.Assert(err, gc.ErrorMatches, "nil Facade not valid")
	c.Assert(w, gc.IsNil)
}

func (s *ManifoldSuite) TestStartNewWorkerError(c *gc.C) {
	cfg := s.validConfig()
	cfg.NewWorker = func(configurator.Config) (*configurator.Worker, error) {
		return nil, errors.New("boom")
	}
	w, err := configurator.Manifold(cfg).Start(context.Background(), nil)
	c.Assert(err, gc.ErrorMatches, "boom")
	c.Assert(w, gc.IsNil)
}
