// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package secrets_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/cloudflared-configurator/core/secrets"
)

type SecretURISuite struct{}

var _ = gc.Suite(&SecretURISuite{})

const (
	secretID  = "9m4e2mr0ui3e8a215n4g"
	secretURI = "secret:9m4e2mr0ui3e8a215n4g"
)

func (s *SecretURISuite) TestParseURI(c *gc.C) {
	for _, t := range []struct {
		in       string
		str      string
		expected *secrets.URI
		err      string
	}{
		{
			in:  "http:nope",
			err: `secret URI "http:nope" not valid`,
		}, {
			in:  "secret:a/b/c",
			err: `secret URI "secret:a/b/c" not valid`,
		}, {
			in:  "secret:a.b.",
			err: `secret URI "secret:a.b." not valid`,
		}, {
			in:       secretURI,
			expected: &secrets.URI{ID: secretID},
		}, {
			in:       secretID,
			str:      secretURI,
			expected: &secrets.URI{ID: secretID},
		},
	} {
		result, err := secrets.ParseURI(t.in)
		if t.err != "" || result == nil {
			c.Check(err, gc.ErrorMatches, t.err)
			continue
		}
		c.Check(result, jc.DeepEquals, t.expected)
		if t.str != "" {
			c.Check(result.String(), gc.Equals, t.str)
		} else {
			c.Check(result.String(), gc.Equals, t.in)
		}
	}
}

func (s *SecretURISuite) TestString(c *gc.C) {
	expected := &secrets.URI{ID: secretID}
	str := expected.String()
	c.Assert(str, gc.Equals, secretURI)
	uri, err := secrets.ParseURI(str)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(uri, jc.DeepEquals, expected)
}

func (s *SecretURISuite) TestNew(c *gc.C) {
	uri := secrets.NewURI()
	c.Assert(uri.Validate(), jc.ErrorIsNil)
	roundTripped, err := secrets.ParseURI(uri.String())
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(roundTripped, jc.DeepEquals, uri)
}

func (s *SecretURISuite) TestValidateEmpty(c *gc.C) {
	var uri secrets.URI
	c.Assert(uri.Validate(), gc.ErrorMatches, "empty secret URI not valid")
}
