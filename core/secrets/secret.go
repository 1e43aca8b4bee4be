// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package secrets provides types for referencing and carrying the
// content of Juju user secrets. The configurator never stores secret
// content itself; it holds references which are resolved at read time
// by the runtime.
package secrets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/juju/errors"
	"github.com/rs/xid"
)

// SecretScheme is the URI scheme of a Juju secret reference.
const SecretScheme = "secret"

// TokenFieldName is the well-known field inside a tunnel token secret
// holding the cloudflared tunnel token value.
const TokenFieldName = "tunnel-token"

var validURIPart = regexp.MustCompile(`^[0-9a-z]{20}$`)

// URI represents a reference to a Juju secret.
type URI struct {
	// ID is the base32 encoded unique identifier of the secret.
	ID string
}

// NewURI returns a URI with a freshly minted ID.
func NewURI() *URI {
	return &URI{ID: xid.New().String()}
}

// ParseURI parses the specified string into a secret URI.
func ParseURI(str string) (*URI, error) {
	id, ok := strings.CutPrefix(str, SecretScheme+":")
	if !ok {
		// Plain IDs without the scheme are also accepted, matching
		// what the config UI lets operators paste in.
		id = str
	}
	if !validURIPart.MatchString(id) {
		return nil, errors.NotValidf("secret URI %q", str)
	}
	return &URI{ID: id}, nil
}

// String prints the URI as a string.
func (u *URI) String() string {
	if u == nil || u.ID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", SecretScheme, u.ID)
}

// Validate returns an error if the URI is not well formed.
func (u *URI) Validate() error {
	if u == nil || u.ID == "" {
		return errors.NotValidf("empty secret URI")
	}
	if !validURIPart.MatchString(u.ID) {
		return errors.NotValidf("secret URI %q", u.String())
	}
	return nil
}
