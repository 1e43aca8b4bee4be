// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package ingress_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/cloudflared-configurator/internal/relation/ingress"
)

type IngressSuite struct{}

var _ = gc.Suite(&IngressSuite{})

func appBag() map[string]string {
	return map[string]string{
		"model": `"example-model"`,
		"name":  `"example"`,
		"port":  `8080`,
	}
}

func (s *IngressSuite) TestParseRequestDefaults(c *gc.C) {
	req, err := ingress.ParseRequest(appBag(), nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(req, jc.DeepEquals, ingress.Request{
		App: ingress.AppData{
			Model:  "example-model",
			Name:   "example",
			Port:   8080,
			Scheme: "http",
		},
	})
}

func (s *IngressSuite) TestParseRequestUnitsSortedByHost(c *gc.C) {
	req, err := ingress.ParseRequest(appBag(), map[string]map[string]string{
		"example/1": {"host": `"example-host-1"`, "ip": `"10.0.0.2"`},
		"example/0": {"host": `"example-host-0"`, "ip": `"10.0.0.1"`},
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(req.Units, jc.DeepEquals, []ingress.UnitData{
		{Host: "example-host-0", IP: "10.0.0.1"},
		{Host: "example-host-1", IP: "10.0.0.2"},
	})
}

func (s *IngressSuite) TestParseRequestExplicitScheme(c *gc.C) {
	bag := appBag()
	bag["scheme"] = `"https"`
	bag["strip-prefix"] = `true`
	req, err := ingress.ParseRequest(bag, nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(req.App.Scheme, gc.Equals, "https")
	c.Assert(req.App.StripPrefix, jc.IsTrue)
}

func (s *IngressSuite) TestParseRequestMissingRequiredField(c *gc.C) {
	bag := appBag()
	delete(bag, "port")
	_, err := ingress.ParseRequest(bag, nil)
	c.Assert(err, gc.ErrorMatches, `ingress field "port" not found`)
}

func (s *IngressSuite) TestParseRequestMalformedField(c *gc.C) {
	bag := appBag()
	bag["port"] = `"not a number"`
	_, err := ingress.ParseRequest(bag, nil)
	c.Assert(err, gc.ErrorMatches, `ingress field "port": json: cannot unmarshal string into Go value of type int`)
}

func (s *IngressSuite) TestParseRequestBadUnitName(c *gc.C) {
	_, err := ingress.ParseRequest(appBag(), map[string]map[string]string{
		"not-a-unit": {"host": `"h"`},
	})
	c.Assert(err, gc.ErrorMatches, `ingress unit name "not-a-unit" not valid`)
}

func (s *IngressSuite) TestParseRequestUnitMissingHost(c *gc.C) {
	_, err := ingress.ParseRequest(appBag(), map[string]map[string]string{
		"example/0": {"ip": `"10.0.0.1"`},
	})
	c.Assert(err, gc.ErrorMatches, `unit "example/0": ingress field "host" not found`)
}

func (s *IngressSuite) TestDescribeEmpty(c *gc.C) {
	c.Assert(ingress.Describe(nil), jc.DeepEquals, []ingress.Request{})
}

func (s *IngressSuite) TestDescribeOrdersByName(c *gc.C) {
	a := ingress.Request{App: ingress.AppData{Name: "a"}}
	b := ingress.Request{App: ingress.AppData{Name: "b"}}
	c.Assert(ingress.Describe([]ingress.Request{b, a}), jc.DeepEquals, []ingress.Request{a, b})
}

func (s *IngressSuite) TestURL(c *gc.C) {
	c.Assert(ingress.URL("a.example.com"), gc.Equals, "https://a.example.com/")
}
